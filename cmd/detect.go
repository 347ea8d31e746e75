package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Probe every wallet endpoint and show which answer",
	Long: `Probe the wallet candidates for the configured network in parallel.

Commands use the first candidate that answers, in the order listed here.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates := walletCandidates()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.DetectTimeout)
		defer cancel()
		spin := ui.NewSpinner(fmt.Sprintf("Probing %d endpoint(s)...", len(candidates)))
		spin.Start()
		results := chain.ProbeAll(ctx, candidates...)
		spin.Stop()

		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 2, Right: true},
			{Title: "Endpoint", Width: 36},
			{Title: "Chain", Width: 18},
			{Title: "Latency", Width: 10, Right: true},
			{Title: "Status", Width: 10},
		})
		chosen := -1
		for i, r := range results {
			status := ui.StyleError.Render("down")
			chainName, latency := "", ""
			if r.OK() {
				status = ui.StyleSuccess.Render("up")
				chainName = reg.Describe(r.ChainID)
				latency = fmt.Sprintf("%d ms", r.Latency.Milliseconds())
				if chosen == -1 {
					chosen = i
					status = ui.StyleSuccess.Render("selected")
				}
			}
			t.AddRow(ui.Row{fmt.Sprint(i + 1), ui.Addr(r.URL), ui.ChainName(chainName), latency, status})
		}
		fmt.Println(t.Render())

		if chosen == -1 {
			return chain.ErrNoProvider
		}
		if verbose {
			for _, r := range results {
				if !r.OK() {
					fmt.Println(ui.Meta(r.URL + ": " + r.Err.Error()))
				}
			}
		}
		return nil
	},
}
