package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup wizard",
	Long:  "Choose the network and, optionally, the wallet endpoint w3dapp should use.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		networks := chain.NewRegistry().All()
		names := make([]string, len(networks))
		for i, n := range networks {
			names[i] = n.Name
		}

		result, err := ui.RunWizard(names)
		if err != nil {
			return err
		}
		if result.Cancelled {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		if result.Network != "" {
			if err := cfg.Set("network", result.Network); err != nil {
				return err
			}
		}
		if result.WalletURL != "" {
			cfg.WalletURL = result.WalletURL
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Println(ui.Success("w3dapp configured for " + ui.ChainName(cfg.Network) + "."))
		fmt.Println(ui.Hint("Connect with: w3dapp connect, or open a dapp with: w3dapp page atm"))
		return nil
	},
}
