package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and update configuration",
	Long: fmt.Sprintf(`View and update ~/.w3dapp/config.json.

Settable keys: %s`, strings.Join(config.Keys, ", ")),
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pairs := make([][2]string, 0, len(config.Keys)+1)
		for _, k := range config.Keys {
			v, err := cfg.Get(k)
			if err != nil {
				return err
			}
			if v == "" {
				v = "(not set)"
			}
			pairs = append(pairs, [2]string{k, v})
		}
		pairs = append(pairs, [2]string{"config dir", cfg.Dir()})
		fmt.Println(ui.KeyValueBlock("Configuration", pairs))

		if len(cfg.CustomEndpoints) > 0 {
			networks := make([]string, 0, len(cfg.CustomEndpoints))
			for n := range cfg.CustomEndpoints {
				networks = append(networks, n)
			}
			sort.Strings(networks)
			var eps [][2]string
			for _, n := range networks {
				for _, url := range cfg.CustomEndpoints[n] {
					eps = append(eps, [2]string{n, url})
				}
			}
			fmt.Println(ui.KeyValueBlock("Custom wallet endpoints", eps))
		}

		fmt.Println(ui.Meta("Wallet candidates: " + strings.Join(walletCandidates(), ", ")))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		v, _ := cfg.Get(args[0])
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %s", args[0], ui.Val(v))))
		return nil
	},
}

var configAddEndpointCmd = &cobra.Command{
	Use:   "add-endpoint <network> <url>",
	Short: "Add a wallet endpoint to probe for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.AddEndpoint(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Endpoint %s added for %s.", ui.Addr(args[1]), ui.ChainName(args[0]))))
		return nil
	},
}

var configRemoveEndpointCmd = &cobra.Command{
	Use:   "remove-endpoint <network> <url>",
	Short: "Remove a custom wallet endpoint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.RemoveEndpoint(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Endpoint %s removed from %s.", args[1], args[0])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(
		configListCmd,
		configGetCmd,
		configSetCmd,
		configAddEndpointCmd,
		configRemoveEndpointCmd,
	)
}
