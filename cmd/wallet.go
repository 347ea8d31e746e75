package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
	"github.com/Mohsinsiddi/w3dapp/internal/ens"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/Mohsinsiddi/w3dapp/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage local wallets",
	Long: `Manage the wallets w3dapp knows about.

Watch-only wallets are labels for addresses. Signing wallets keep their
private key in the OS keychain and sign transactions locally, so they work
against any node without a wallet app. The default signing wallet (or
--wallet) is used by atm, office, page and deploy.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> <address|ens-name>",
	Short: "Add a watch-only wallet",
	Long: `Add a watch-only wallet. An ENS name such as vitalik.eth is resolved
through the detected wallet, so the network must have an ENS registry.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, address := args[0], args[1]
		if ens.IsName(address) {
			resolved, err := resolveENS(cmd.Context(), address)
			if err != nil {
				return err
			}
			fmt.Println(ui.Meta(fmt.Sprintf("%s → %s", address, resolved.Hex())))
			address = resolved.Hex()
		}
		mgr := newWalletManager()
		w, err := mgr.AddWatchOnly(name, address)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address.Hex()))))
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a signing wallet from a private key",
	Long: `Import a private key as a signing wallet. The key is stored in the OS
keychain (or an encrypted file where no keychain is available).

The key is read from --key, from $W3DAPP_KEY, or prompted for without echo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		hexKey := walletKeyFlag
		if hexKey == "" {
			hexKey = os.Getenv(wallet.EnvKey)
		}
		if hexKey == "" {
			var err error
			hexKey, err = keyring.TerminalPrompt("Private key (hex)")
			if err != nil {
				return err
			}
		}
		hexKey = strings.TrimSpace(hexKey)

		mgr := newWalletManager()
		w, err := mgr.AddWithKey(name, hexKey)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address.Hex()))))
		if mgr.Default() != w {
			fmt.Println(ui.Hint(fmt.Sprintf("Sign with it by default: w3dapp wallet default %s", name)))
		}
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()
		wallets := mgr.List()

		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Import one with: w3dapp wallet import dev --key 0x..."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if w.IsDefault {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{
				ui.Val(w.Name),
				ui.Addr(w.Address.Hex()),
				ui.Meta(w.Type),
				def,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr := newWalletManager()
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			cfg.Save() //nolint:errcheck
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletDefaultCmd = &cobra.Command{
	Use:   "default [name]",
	Short: "Set the default wallet",
	Long:  "Set the default wallet. Without a name, pick one from a list.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := newWalletManager()

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets := mgr.List()
			if len(wallets) == 0 {
				fmt.Println(ui.Info("No wallets configured yet."))
				return nil
			}
			items := make([]ui.PickerItem, len(wallets))
			for i, w := range wallets {
				items[i] = ui.PickerItem{
					Label:    w.Name,
					SubLabel: ui.TruncateAddr(w.Address.Hex()) + "  " + w.Type,
					Value:    w.Name,
					Current:  w.IsDefault,
				}
			}
			picked, err := ui.PickItem("Default wallet", items)
			if err != nil {
				return err
			}
			if picked == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
			name = picked
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		cfg.Save() //nolint:errcheck
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

// resolveENS resolves name through the detected wallet.
func resolveENS(ctx context.Context, name string) (common.Address, error) {
	det, p, err := detectWallet(ctx)
	if err != nil {
		return common.Address{}, err
	}
	defer det.Provider.Close()

	rctx, cancel := readContext(ctx)
	defer cancel()
	return ens.NewResolver(p).Resolve(rctx, name)
}

func init() {
	walletImportCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key")
	walletCmd.AddCommand(walletAddCmd, walletImportCmd, walletListCmd, walletRemoveCmd, walletDefaultCmd)
}
