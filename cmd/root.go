package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3dapp/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir        string
	cfg           *config.Config
	verbose       bool
	networkFlag   string
	walletURLFlag string
	walletFlag    string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3dapp",
	Short: "Wallet-bound dapps in your terminal",
	Long: `w3dapp connects to your wallet and drives small contract dapps from the terminal.

  Detect a wallet, authorize an account, and use the ATM or office booking
  contracts as commands or as a full-screen page.

The wallet is found by probing, in order: --wallet-url (or W3DAPP_WALLET_URL,
or the configured wallet_url), the Frame desktop wallet, and the node of the
configured network. A signing wallet added with "w3dapp wallet import" signs
locally instead.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		config.LoadDotenvIfPresent()
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if networkFlag != "" {
			cfg.Network = strings.ToLower(networkFlag)
		}
		return nil
	},
}

// Execute runs the root command. Interrupts cancel in-flight wallet requests.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $W3DAPP_CONFIG_DIR or ~/.w3dapp)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print wallet round trips to stderr")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "network to use (default: configured network)")
	rootCmd.PersistentFlags().StringVar(&walletURLFlag, "wallet-url", "", "wallet endpoint to probe first")
	rootCmd.PersistentFlags().StringVarP(&walletFlag, "wallet", "w", "", "signing wallet to use instead of the wallet provider")

	// Register all sub-commands.
	rootCmd.AddCommand(
		initCmd,
		detectCmd,
		connectCmd,
		atmCmd,
		officeCmd,
		pageCmd,
		deployCmd,
		contractCmd,
		walletCmd,
		configCmd,
	)
}
