package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/sync"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	contractKindFlag     string
	contractArtifactFlag string
	contractValueFlag    string
	contractImportAs     []string
	contractImportWatch  bool
)

var contractCmd = &cobra.Command{
	Use:   "contract",
	Short: "Manage and call project contracts",
	Long: `Manage the contracts listed in ./w3dapp.toml and call their methods.

Each entry is keyed by name and network. Its methods come from a
Hardhat/Foundry artifact, or from a built-in ABI (atm, office).

  w3dapp contract add atm 0x5FbDB2315678afecb367f032d93F642f64180aa3
  w3dapp contract methods office
  w3dapp contract call office checkOfficeAvailability 1
  w3dapp contract send atm deposit 5`,
}

var contractBuiltinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "List the built-in contract ABIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Kind", Width: 8},
			{Title: "Name", Width: 28},
			{Title: "Description", Width: 60},
		})
		for _, b := range contract.AllBuiltins() {
			t.AddRow(ui.Row{ui.Val(b.ID), b.Name, ui.Meta(b.Description)})
		}
		fmt.Println(t.Render())
		return nil
	},
}

// methodSetFor resolves the method set of a project contract or a built-in.
func methodSetFor(name string) (*contract.MethodSet, error) {
	reg, err := projectRegistry()
	if err != nil {
		return nil, err
	}
	if e, err := reg.Get(name, cfg.Network); err == nil {
		return reg.Methods(e)
	}
	return contract.BuiltinMethods(name)
}

var contractMethodsCmd = &cobra.Command{
	Use:   "methods <contract>",
	Short: "List a contract's methods with their selectors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := methodSetFor(args[0])
		if err != nil {
			return err
		}
		t := ui.NewTable([]ui.Column{
			{Title: "Selector", Width: 10},
			{Title: "Method", Width: 64},
		})
		for _, m := range set.Describe() {
			t.AddRow(ui.Row{ui.Addr(m.Selector), m.String()})
		}
		fmt.Println(ui.StyleTitle.Render(set.Name()))
		fmt.Println(t.Render())
		return nil
	},
}

var contractListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the contracts in w3dapp.toml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := projectRegistry()
		if err != nil {
			return err
		}
		entries := reg.All()
		if len(entries) == 0 {
			fmt.Println(ui.Info("No contracts in " + reg.Path() + "."))
			fmt.Println(ui.Hint("Deploy one with: w3dapp deploy atm --artifact <path>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Network", Width: 12},
			{Title: "Address", Width: 44},
			{Title: "Source", Width: 40},
		})
		for _, e := range entries {
			addr := ui.Meta("not deployed")
			if e.HasAddress() {
				addr = ui.Addr(e.Address)
			}
			source := e.Artifact
			if source == "" {
				kind := e.Kind
				if kind == "" {
					kind = e.Name
				}
				source = "built-in " + kind
			}
			t.AddRow(ui.Row{ui.Val(e.Name), ui.ChainName(e.Network), addr, ui.Meta(source)})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var contractAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add or update a contract in w3dapp.toml",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		reg, err := projectRegistry()
		if err != nil {
			return err
		}

		e, err := reg.Get(name, cfg.Network)
		if err != nil {
			e = &contract.Entry{Name: name, Network: cfg.Network}
		}
		if len(args) == 2 {
			if !common.IsHexAddress(args[1]) {
				return fmt.Errorf("invalid address %q", args[1])
			}
			e.Address = common.HexToAddress(args[1]).Hex()
		}
		if contractKindFlag != "" {
			e.Kind = strings.ToLower(contractKindFlag)
		}
		if contractArtifactFlag != "" {
			e.Artifact = relativeToProject(reg, contractArtifactFlag)
		}

		// The entry must resolve to a method set before it is saved.
		if _, err := reg.Methods(e); err != nil {
			return fmt.Errorf("%s: %w (pass --kind or --artifact)", name, err)
		}
		reg.Add(e)
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q saved for %s.", name, cfg.Network)))
		return nil
	},
}

var contractRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a contract from w3dapp.toml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := projectRegistry()
		if err != nil {
			return err
		}
		if err := reg.Remove(args[0], cfg.Network); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Contract %q removed from %s.", args[0], cfg.Network)))
		return nil
	},
}

var contractCallCmd = &cobra.Command{
	Use:   "call <contract> <method> [args...]",
	Short: "Call a read-only method",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mc, err := openMethod(cmd.Context(), args)
		if err != nil {
			return err
		}
		defer mc.d.Close()

		ctx, cancel := readContext(cmd.Context())
		defer cancel()
		out, err := mc.d.s.Call(ctx, mc.method, mc.args...)
		if err != nil {
			return err
		}

		abiMethod, _ := mc.set.Method(mc.method)
		if len(out) == 0 {
			fmt.Println(ui.Meta("(no return values)"))
			return nil
		}
		pairs := make([][2]string, len(out))
		for i, v := range out {
			label := strconv.Itoa(i)
			if abiMethod != nil && i < len(abiMethod.Outputs) {
				o := abiMethod.Outputs[i]
				label = o.Type.String()
				if o.Name != "" {
					label = o.Name + " " + label
				}
			}
			pairs[i] = [2]string{label, contract.FormatValue(v)}
		}
		fmt.Println(ui.KeyValueBlock(mc.method, pairs))
		return nil
	},
}

var contractSendCmd = &cobra.Command{
	Use:   "send <contract> <method> [args...]",
	Short: "Send a state-changing method and wait for confirmation",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value *big.Int
		if contractValueFlag != "" {
			v, err := chain.ParseETH(contractValueFlag)
			if err != nil {
				return fmt.Errorf("invalid --value: %w", err)
			}
			value = v
		}

		mc, err := openMethod(cmd.Context(), args)
		if err != nil {
			return err
		}
		defer mc.d.Close()

		var receipt *chain.Receipt
		err = runTx(cmd.Context(), "Waiting for confirmation...", func(ctx context.Context) error {
			var err error
			receipt, err = mc.d.s.Invoke(ctx, mc.method, value, mc.args...)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s confirmed in block %d", mc.method, uint64(receipt.BlockNumber))))
		fmt.Println(ui.KeyValueBlock("", [][2]string{
			{"Tx hash", receipt.TxHash.Hex()},
			{"Gas used", strconv.FormatUint(uint64(receipt.GasUsed), 10)},
		}))
		return nil
	},
}

var contractImportCmd = &cobra.Command{
	Use:   "import <ignition-deployment-dir>",
	Short: "Record Hardhat Ignition deployments in w3dapp.toml",
	Long: `Read deployed_addresses.json from a Hardhat Ignition deployment directory
and record every contract in w3dapp.toml, with its artifact when Ignition
kept one. The network comes from the chain-<id> directory name unless
--network is given.

  w3dapp contract import ignition/deployments/chain-31337 --as Assessment=atm --as SharedOfficeBookingSystem=office

With --watch the import re-runs whenever the deployment changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rename := make(map[string]string, len(contractImportAs))
		for _, kv := range contractImportAs {
			from, to, ok := strings.Cut(kv, "=")
			if !ok || from == "" || to == "" {
				return fmt.Errorf("invalid --as %q: want ContractName=entry", kv)
			}
			rename[from] = to
		}

		reg, err := projectRegistry()
		if err != nil {
			return err
		}
		network := ""
		if cmd.Flags().Changed("network") {
			network = cfg.Network
		}
		s := sync.New(reg, rename)

		report := func(entries []*contract.Entry) {
			for _, e := range entries {
				fmt.Println(ui.Success(fmt.Sprintf("%s on %s → %s", ui.Val(e.Name), ui.ChainName(e.Network), ui.Addr(e.Address))))
			}
		}
		if !contractImportWatch {
			entries, err := s.Run(args[0], network)
			if err != nil {
				return err
			}
			report(entries)
			return nil
		}

		fmt.Println(ui.Meta("Watching " + args[0] + ", Ctrl+C to stop."))
		return s.Watch(cmd.Context(), args[0], network, cfg.PollInterval(), func(entries []*contract.Entry, err error) {
			if err != nil {
				fmt.Println(ui.FormatError(err))
				return
			}
			report(entries)
		})
	},
}

// methodCall is a connected contract plus one parsed method invocation.
type methodCall struct {
	d      *dapp
	set    *contract.MethodSet
	method string
	args   []any
}

// openMethod connects to the contract named by args[0] and parses the
// arguments of method args[1].
func openMethod(ctx context.Context, args []string) (*methodCall, error) {
	name, method := args[0], args[1]
	set, err := methodSetFor(name)
	if err != nil {
		return nil, err
	}
	callArgs, err := set.ParseArgs(method, args[2:])
	if err != nil {
		return nil, err
	}

	d, err := openDapp(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if err := d.connect(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return &methodCall{d: d, set: set, method: method, args: callArgs}, nil
}

func init() {
	contractAddCmd.Flags().StringVar(&contractKindFlag, "kind", "", "built-in ABI to use (atm, office)")
	contractAddCmd.Flags().StringVar(&contractArtifactFlag, "artifact", "", "Hardhat/Foundry artifact or ABI JSON")
	contractSendCmd.Flags().StringVar(&contractValueFlag, "value", "", "ETH to attach (payable methods only)")
	contractCallCmd.Flags().StringVar(&addressFlag, "address", "", "contract address (overrides w3dapp.toml)")
	contractSendCmd.Flags().StringVar(&addressFlag, "address", "", "contract address (overrides w3dapp.toml)")
	contractImportCmd.Flags().StringArrayVar(&contractImportAs, "as", nil, "record ContractName (or Module#ContractName) under another name")
	contractImportCmd.Flags().BoolVar(&contractImportWatch, "watch", false, "re-import when the deployment changes")

	contractCmd.AddCommand(
		contractBuiltinsCmd,
		contractMethodsCmd,
		contractListCmd,
		contractAddCmd,
		contractRemoveCmd,
		contractImportCmd,
		contractCallCmd,
		contractSendCmd,
	)
}
