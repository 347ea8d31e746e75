package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/office"
	"github.com/Mohsinsiddi/w3dapp/internal/price"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var officeCmd = &cobra.Command{
	Use:   "office",
	Short: "List, book and return shared offices",
	Long: `Drive the shared office booking contract with the connected wallet account.

  w3dapp office add "Corner room"     list an office at office_price_eth per hour
  w3dapp office check 1               show whether office 1 is free
  w3dapp office book 1 3              book office 1 for 3 hours, paying price × 3
  w3dapp office return 1              end your booking
  w3dapp office earnings              show what your offices earned
  w3dapp office withdraw              pay out your earnings`,
}

var officeFiat string

// openOffice connects and returns a booking client. The caller must Close the dapp.
func openOffice(ctx context.Context) (*dapp, *office.Client, error) {
	price, err := cfg.OfficePrice()
	if err != nil {
		return nil, nil, fmt.Errorf("office_price_eth: %w", err)
	}
	d, err := openDapp(ctx, "office", false)
	if err != nil {
		return nil, nil, err
	}
	if err := d.connect(ctx); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, office.New(d.s, office.WithPricePerHour(price)), nil
}

func parseOfficeID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid office id %q", s)
	}
	return id, nil
}

// officeTx runs op against the booking contract and prints its message.
func officeTx(cmd *cobra.Command, op func(ctx context.Context, c *office.Client) error) error {
	d, c, err := openOffice(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	if err := runTx(cmd.Context(), "Waiting for confirmation...", func(ctx context.Context) error {
		return op(ctx, c)
	}); err != nil {
		return err
	}
	fmt.Println(ui.Success(c.Message()))
	if earned, ok := c.Earnings(); ok {
		fmt.Printf("  %s %s\n", ui.Meta("Earnings:"), ui.Val(chain.WeiToETH(earned)+" ETH"))
	}
	return nil
}

var officeAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "List a new office owned by your account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return officeTx(cmd, func(ctx context.Context, c *office.Client) error {
			return c.AddOffice(ctx, args[0])
		})
	},
}

var officeBookCmd = &cobra.Command{
	Use:   "book <id> <hours>",
	Short: "Book an office, paying its hourly price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseOfficeID(args[0])
		if err != nil {
			return err
		}
		hours, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q", args[1])
		}
		return officeTx(cmd, func(ctx context.Context, c *office.Client) error {
			return c.BookOffice(ctx, id, hours)
		})
	},
}

var officeReturnCmd = &cobra.Command{
	Use:   "return <id>",
	Short: "End your booking of an office",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseOfficeID(args[0])
		if err != nil {
			return err
		}
		return officeTx(cmd, func(ctx context.Context, c *office.Client) error {
			return c.ReturnOffice(ctx, id)
		})
	},
}

var officeWithdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw your accrued earnings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return officeTx(cmd, func(ctx context.Context, c *office.Client) error {
			return c.WithdrawEarnings(ctx)
		})
	},
}

var officeCheckCmd = &cobra.Command{
	Use:   "check <id>...",
	Short: "Show the availability of one or more offices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]uint64, len(args))
		for i, a := range args {
			id, err := parseOfficeID(a)
			if err != nil {
				return err
			}
			ids[i] = id
		}

		d, c, err := openOffice(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		t := ui.NewTable([]ui.Column{
			{Title: "ID", Width: 4, Right: true},
			{Title: "Name", Width: 20},
			{Title: "Status", Width: 10},
			{Title: "Price/hour", Width: 14, Right: true},
			{Title: "Owner", Width: 14},
		})
		for _, id := range ids {
			ctx, cancel := readContext(cmd.Context())
			o, err := c.CheckAvailability(ctx, id)
			cancel()
			if err != nil {
				return err
			}
			status := ui.StyleSuccess.Render("free")
			if o.Booked {
				status = ui.StyleWarning.Render("booked")
			}
			t.AddRow(ui.Row{
				strconv.FormatUint(o.ID, 10),
				ui.Val(o.Name),
				status,
				chain.WeiToETH(o.PricePerHour) + " ETH",
				ui.Addr(ui.TruncateAddr(o.Owner.Hex())),
			})
		}
		fmt.Println(t.Render())
		return nil
	},
}

var officeEarningsCmd = &cobra.Command{
	Use:   "earnings",
	Short: "Show the earnings of your account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, c, err := openOffice(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		ctx, cancel := readContext(cmd.Context())
		defer cancel()
		earned, err := c.RefreshEarnings(ctx)
		if err != nil {
			return err
		}
		acct, _ := d.s.Account()
		pairs := [][2]string{
			{"Account", acct.Hex()},
			{"Earnings", chain.WeiToETH(earned) + " ETH"},
			{"Price per hour", chain.WeiToETH(c.PricePerHour()) + " ETH"},
		}
		if officeFiat != "" {
			f := price.NewFetcher(officeFiat)
			v, err := f.Value(cmd.Context(), earned)
			if err != nil {
				fmt.Println(ui.Warn("Price unavailable: " + err.Error()))
			} else {
				pairs = append(pairs, [2]string{"Value", "≈ " + f.Format(v)})
			}
		}
		fmt.Println(ui.KeyValueBlock("Office earnings", pairs))
		return nil
	},
}

func init() {
	officeEarningsCmd.Flags().StringVar(&officeFiat, "fiat", "", "also show the earnings in this currency (e.g. usd, eur)")
	officeCmd.PersistentFlags().StringVar(&addressFlag, "address", "", "booking contract address (overrides w3dapp.toml)")
	officeCmd.AddCommand(
		officeAddCmd,
		officeCheckCmd,
		officeBookCmd,
		officeReturnCmd,
		officeEarningsCmd,
		officeWithdrawCmd,
	)
}
