package cmd

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/Mohsinsiddi/w3dapp/internal/atm"
	"github.com/Mohsinsiddi/w3dapp/internal/chain"
	"github.com/Mohsinsiddi/w3dapp/internal/office"
	"github.com/Mohsinsiddi/w3dapp/internal/ui"
	"github.com/spf13/cobra"
)

var pageCmd = &cobra.Command{
	Use:   "page <atm|office>",
	Short: "Open a dapp as a full-screen page",
	Long: `Open the ATM or office booking dapp as an interactive page.

The page asks you to install a wallet when none answers, offers to connect
when no account is authorized, and shows the contract actions once bound.
Wallet account switches are followed while the page is open.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"atm", "office"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(args[0])
		var build func(d *dapp) (ui.PageConfig, error)
		switch name {
		case "atm":
			build = atmPage
		case "office":
			build = officePage
		default:
			return fmt.Errorf("unknown page %q: choose atm or office", args[0])
		}

		d, err := openDapp(cmd.Context(), name, true)
		if err != nil {
			return err
		}
		defer d.Close()

		// A local key is bound up front; the page only restores or
		// authorizes accounts held by the wallet provider.
		if d.signer != nil && d.s.HasProvider() {
			if err := d.connect(cmd.Context()); err != nil {
				return err
			}
		}

		pc, err := build(d)
		if err != nil {
			return err
		}
		pc.Network = d.network()
		pc.Session = d.s
		pc.Timeout = cfg.ConfirmTimeout()
		if d.signer == nil {
			pc.WatchInterval = cfg.PollInterval()
		}
		return ui.RunPage(pc)
	},
}

// inputNote holds the last input error so the page can show it in place of
// the client's message.
type inputNote struct{ v atomic.Value }

func (n *inputNote) set(s string) { n.v.Store(s) }

func (n *inputNote) get() string {
	s, _ := n.v.Load().(string)
	return s
}

// message prefers a pending input error over the client's message.
func (n *inputNote) message(client func() string) func() string {
	return func() string {
		if s := n.get(); s != "" {
			return s
		}
		return client()
	}
}

// wrap clears the note before each run.
func (n *inputNote) wrap(run func(ctx context.Context, in string) error) func(context.Context, string) error {
	return func(ctx context.Context, in string) error {
		n.set("")
		return run(ctx, in)
	}
}

func (n *inputNote) fail(format string, a ...any) error {
	err := fmt.Errorf(format, a...)
	n.set(err.Error())
	return err
}

func atmPage(d *dapp) (ui.PageConfig, error) {
	c := atm.New(d.s)
	note := &inputNote{}

	amountAction := func(key, label string, move func(context.Context, *big.Int) error) ui.PageAction {
		return ui.PageAction{
			Key: key, Label: label, Prompt: "Amount",
			Run: note.wrap(func(ctx context.Context, in string) error {
				amount, err := chain.ParseUint(in)
				if err != nil {
					return note.fail("Invalid amount %q", in)
				}
				return move(ctx, amount)
			}),
		}
	}

	return ui.PageConfig{
		Title: "ATM",
		Actions: []ui.PageAction{
			amountAction("d", "deposit", c.Deposit),
			amountAction("w", "withdraw", c.Withdraw),
		},
		Refresh: func(ctx context.Context) error {
			_, err := c.RefreshBalance(ctx)
			return err
		},
		Details: func() [][2]string {
			bal := "…"
			if v, ok := c.Balance(); ok {
				bal = v.String()
			}
			out := [][2]string{{"Balance", bal}}
			history := c.History()
			for i := len(history) - 1; i >= 0 && i >= len(history)-5; i-- {
				h := history[i]
				out = append(out, [2]string{fmt.Sprintf("#%d %s", i+1, h.Type), h.Amount.String()})
			}
			return out
		},
		Message: note.message(c.Message),
	}, nil
}

func officePage(d *dapp) (ui.PageConfig, error) {
	price, err := cfg.OfficePrice()
	if err != nil {
		return ui.PageConfig{}, fmt.Errorf("office_price_eth: %w", err)
	}
	c := office.New(d.s, office.WithPricePerHour(price))
	note := &inputNote{}

	parseID := func(s string) (uint64, error) {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, note.fail("Invalid office id %q", s)
		}
		return id, nil
	}

	return ui.PageConfig{
		Title: "Shared Office Booking",
		Actions: []ui.PageAction{
			{
				Key: "a", Label: fmt.Sprintf("add office (%s ETH/hour)", chain.WeiToETH(price)), Prompt: "Office name",
				Run: note.wrap(func(ctx context.Context, in string) error {
					if in == "" {
						return note.fail("Office name is required")
					}
					return c.AddOffice(ctx, in)
				}),
			},
			{
				Key: "k", Label: "check availability", Prompt: "Office id",
				Run: note.wrap(func(ctx context.Context, in string) error {
					id, err := parseID(in)
					if err != nil {
						return err
					}
					_, err = c.CheckAvailability(ctx, id)
					return err
				}),
			},
			{
				Key: "b", Label: "book office", Prompt: "Office id and hours",
				Run: note.wrap(func(ctx context.Context, in string) error {
					fields := strings.Fields(in)
					if len(fields) != 2 {
						return note.fail("Enter an office id and a number of hours, e.g. 1 3")
					}
					id, err := parseID(fields[0])
					if err != nil {
						return err
					}
					hours, err := strconv.ParseUint(fields[1], 10, 64)
					if err != nil {
						return note.fail("Invalid hours %q", fields[1])
					}
					return c.BookOffice(ctx, id, hours)
				}),
			},
			{
				Key: "t", Label: "return office", Prompt: "Office id",
				Run: note.wrap(func(ctx context.Context, in string) error {
					id, err := parseID(in)
					if err != nil {
						return err
					}
					return c.ReturnOffice(ctx, id)
				}),
			},
			{
				Key: "e", Label: "withdraw earnings",
				Run: note.wrap(func(ctx context.Context, _ string) error {
					return c.WithdrawEarnings(ctx)
				}),
			},
		},
		Refresh: func(ctx context.Context) error {
			_, err := c.RefreshEarnings(ctx)
			return err
		},
		Details: func() [][2]string {
			earned := "…"
			if v, ok := c.Earnings(); ok {
				earned = chain.WeiToETH(v) + " ETH"
			}
			out := [][2]string{{"Earnings", earned}}

			offices := c.Offices()
			ids := make([]uint64, 0, len(offices))
			for id := range offices {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			for _, id := range ids {
				o := offices[id]
				status := "free"
				if o.Booked {
					status = "booked"
				}
				out = append(out, [2]string{
					fmt.Sprintf("Office %d", id),
					fmt.Sprintf("%s · %s · %s ETH/h", o.Name, status, chain.WeiToETH(o.PricePerHour)),
				})
			}
			return out
		},
		Message: note.message(c.Message),
	}, nil
}
