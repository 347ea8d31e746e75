package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3dapp/internal/ens"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var connectWatch bool

var connectCmd = &cobra.Command{
	Use:   "connect [contract]",
	Short: "Authorize a wallet account and bind a contract",
	Long: `Detect the wallet, authorize an account, and bind the contract (default: atm).

An account the wallet already authorized is reused without a prompt.
With --watch the command keeps running and re-binds whenever the wallet
switches accounts.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "atm"
		if len(args) == 1 {
			name = args[0]
		}

		d, err := openDapp(cmd.Context(), name, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.connect(cmd.Context()); err != nil {
			return err
		}
		fmt.Println(ui.Success("Wallet connected."))
		printConnected(d)
		if name := primaryName(cmd.Context(), d); name != "" {
			fmt.Println(ui.Meta("  ENS name: " + name))
		}

		if !connectWatch {
			return nil
		}
		if d.signer != nil {
			fmt.Println(ui.Hint("Signing locally with " + d.signer.Name + ": the account does not change."))
			return nil
		}

		fmt.Println(ui.Meta("Watching for account changes, Ctrl+C to stop."))
		for change := range d.s.WatchAccounts(cmd.Context(), cfg.PollInterval()) {
			switch change.State {
			case session.Bound:
				fmt.Println(ui.Info(fmt.Sprintf("Account changed: %s → %s", ui.TruncateAddr(change.From.Hex()), ui.Addr(change.To.Hex()))))
			case session.Unconnected:
				fmt.Println(ui.Warn("The wallet no longer exposes an account."))
			default:
				fmt.Println(ui.Warn(fmt.Sprintf("Account changed to %s but could not re-bind.", ui.Addr(change.To.Hex()))))
			}
		}
		return nil
	},
}

// primaryName looks up the bound account's ENS name. Chains without an ENS
// registry yield "".
func primaryName(ctx context.Context, d *dapp) string {
	acct, ok := d.s.Account()
	if !ok || !d.s.HasProvider() {
		return ""
	}
	rctx, cancel := readContext(ctx)
	defer cancel()
	name, err := ens.NewResolver(d.s.Provider()).Lookup(rctx, acct)
	if err != nil {
		return ""
	}
	return name
}

func init() {
	connectCmd.Flags().BoolVar(&connectWatch, "watch", false, "keep running and follow account switches")
	connectCmd.Flags().StringVar(&addressFlag, "address", "", "contract address (overrides w3dapp.toml)")
}
