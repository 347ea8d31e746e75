package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/Mohsinsiddi/w3dapp/internal/config"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/deploy"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var deployArtifact string

var deployCmd = &cobra.Command{
	Use:   "deploy <contract>",
	Short: "Deploy a compiled contract and record its address",
	Long: `Deploy a contract from its Hardhat or Foundry artifact and record the
address in w3dapp.toml for the current network.

The artifact comes from --artifact or from the contract's entry in
w3dapp.toml. The transaction is signed by the --wallet / default signing
wallet, or else by the connected wallet account.

  w3dapp deploy atm --artifact artifacts/contracts/ATM.sol/ATM.json
  w3dapp deploy office --network sepolia`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		ctx := cmd.Context()

		reg, err := projectRegistry()
		if err != nil {
			return err
		}
		artifactPath := deployArtifact
		if artifactPath == "" {
			e, err := reg.Get(name, cfg.Network)
			if err != nil || e.Artifact == "" {
				return fmt.Errorf("no artifact for %s on %s: pass --artifact <path>", name, cfg.Network)
			}
			artifactPath = reg.ArtifactPath(e)
		}
		artifact, err := contract.LoadArtifact(artifactPath)
		if err != nil {
			return err
		}

		mgr := newWalletManager()
		w, err := signingWallet(mgr)
		if err != nil {
			return err
		}
		det, p, err := detectWallet(ctx)
		if err != nil {
			return err
		}
		defer det.Provider.Close()

		signerFactory := signerFor(mgr, w)
		d := &dapp{
			det:    det,
			signer: w,
			s:      session.New(session.Config{Methods: artifact.Methods, SignerFor: signerFactory}),
		}
		d.s.SetProvider(p)
		if err := d.connect(ctx); err != nil {
			return err
		}
		acct, _ := d.s.Account()
		signer, err := signerFactory(p, acct)
		if err != nil {
			return err
		}

		fmt.Println(ui.Info(fmt.Sprintf("Deploying %s from %s on %s", ui.Val(artifact.ContractName), ui.Addr(acct.Hex()), ui.ChainName(d.network()))))

		dctx, cancel := context.WithTimeout(ctx, config.TxDeployTimeout)
		defer cancel()
		spin := ui.NewSpinner("Waiting for deployment confirmation...")
		spin.Start()
		res, err := deploy.New(p, signer).WithPollInterval(cfg.PollInterval()).Deploy(dctx, artifact)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success(res.Summary()))
		fmt.Println(ui.KeyValueBlock("", [][2]string{
			{"Tx hash", res.TxHash.Hex()},
			{"Block", strconv.FormatUint(res.BlockNumber, 10)},
			{"Gas used", strconv.FormatUint(res.GasUsed, 10)},
		}))

		e := reg.SetAddress(name, cfg.Network, res.Address)
		if deployArtifact != "" {
			e.Artifact = relativeToProject(reg, deployArtifact)
		}
		if _, ok := contract.GetBuiltin(name); ok && e.Kind == "" {
			e.Kind = name
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("recording address: %w", err)
		}
		fmt.Println(ui.Hint(fmt.Sprintf("Recorded in %s as %s on %s", reg.Path(), name, cfg.Network)))
		return nil
	},
}

// relativeToProject stores artifact paths relative to the project file when possible.
func relativeToProject(reg *contract.Registry, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	base, err := filepath.Abs(filepath.Dir(reg.Path()))
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(base, abs); err == nil {
		return rel
	}
	return path
}

func init() {
	deployCmd.Flags().StringVar(&deployArtifact, "artifact", "", "Hardhat/Foundry artifact JSON (overrides w3dapp.toml)")
}
