package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3dapp/internal/atm"
	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var atmCmd = &cobra.Command{
	Use:   "atm",
	Short: "Deposit to and withdraw from the ATM contract",
	Long: `Drive the ATM contract with the connected wallet account.

Amounts are whole units of the contract's ledger, not ETH:
  w3dapp atm deposit 5
  w3dapp atm withdraw 2
  w3dapp atm balance`,
}

// openATM connects and returns an ATM client. The caller must Close the dapp.
func openATM(ctx context.Context) (*dapp, *atm.Client, error) {
	d, err := openDapp(ctx, "atm", false)
	if err != nil {
		return nil, nil, err
	}
	if err := d.connect(ctx); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, atm.New(d.s), nil
}

func atmMoveCmd(use, short string, move func(c *atm.Client) func(context.Context, *big.Int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <amount>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := chain.ParseUint(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			d, c, err := openATM(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			err = runTx(cmd.Context(), "Waiting for confirmation...", func(ctx context.Context) error {
				return move(c)(ctx, amount)
			})
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(c.Message()))
			if bal, ok := c.Balance(); ok {
				fmt.Printf("  %s %s\n", ui.Meta("Balance:"), ui.Val(bal.String()))
			}
			return nil
		},
	}
}

var atmDepositCmd = atmMoveCmd("deposit", "Deposit an amount", func(c *atm.Client) func(context.Context, *big.Int) error {
	return c.Deposit
})

var atmWithdrawCmd = atmMoveCmd("withdraw", "Withdraw an amount", func(c *atm.Client) func(context.Context, *big.Int) error {
	return c.Withdraw
})

var atmBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the balance of the connected account",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, c, err := openATM(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := readContext(cmd.Context())
		defer cancel()
		bal, err := c.RefreshBalance(ctx)
		if err != nil {
			return err
		}
		acct, _ := d.s.Account()
		fmt.Println(ui.KeyValueBlock("ATM", [][2]string{
			{"Account", acct.Hex()},
			{"Balance", bal.String()},
		}))
		return nil
	},
}

func init() {
	atmCmd.PersistentFlags().StringVar(&addressFlag, "address", "", "ATM contract address (overrides w3dapp.toml)")
	atmCmd.AddCommand(atmDepositCmd, atmWithdrawCmd, atmBalanceCmd)
}
