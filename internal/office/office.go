// Package office is the client for the shared office booking contract.
package office

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	"github.com/ethereum/go-ethereum/common"
)

// Method names of the booking contract.
const (
	MethodAddOffice        = "addOffice"
	MethodBookOffice       = "bookOffice"
	MethodReturnOffice     = "returnOffice"
	MethodWithdrawEarnings = "withdrawEarnings"
	MethodAvailability     = "checkOfficeAvailability"
	MethodEarnings         = "earnings"
)

// DefaultPricePerHour is what new offices are listed at: 10 ETH.
var DefaultPricePerHour = new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))

// Office is the contract's view of one office.
type Office struct {
	ID           uint64
	Name         string
	Booked       bool
	PricePerHour *big.Int
	Owner        common.Address
}

// Client drives the booking contract through a session.
type Client struct {
	s        *session.Session
	price    *big.Int
	offices  *session.Mirror[uint64, Office]
	earnings *session.Mirror[common.Address, *big.Int]

	mu      sync.Mutex
	message string
}

// Option configures a Client.
type Option func(*Client)

// WithPricePerHour sets the hourly price used by AddOffice.
func WithPricePerHour(wei *big.Int) Option {
	return func(c *Client) {
		if wei != nil && wei.Sign() > 0 {
			c.price = new(big.Int).Set(wei)
		}
	}
}

// New returns a client for the session's booking contract.
func New(s *session.Session, opts ...Option) *Client {
	c := &Client{
		s:        s,
		price:    DefaultPricePerHour,
		offices:  session.NewMirror[uint64, Office](),
		earnings: session.NewMirror[common.Address, *big.Int](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PricePerHour returns the listing price used by AddOffice.
func (c *Client) PricePerHour() *big.Int { return new(big.Int).Set(c.price) }

// AddOffice lists a new office owned by the active account.
func (c *Client) AddOffice(ctx context.Context, name string) error {
	c.setMessage("")
	if _, err := c.s.Invoke(ctx, MethodAddOffice, nil, name, c.price); err != nil {
		c.setMessage("Error adding office: " + err.Error())
		return err
	}
	c.setMessage("Office added successfully!")
	return nil
}

// BookOffice books office id for hours, paying price × hours. The duration
// is passed through as given; the contract rejects one it does not accept.
func (c *Client) BookOffice(ctx context.Context, id, hours uint64) error {
	c.setMessage("")
	current, err := c.read(ctx, id)
	if err != nil {
		c.setMessage("Unable to book office: " + err.Error())
		return err
	}
	cost := new(big.Int).Mul(current.PricePerHour, new(big.Int).SetUint64(hours))

	if _, err := c.s.Invoke(ctx, MethodBookOffice, cost, idArg(id), new(big.Int).SetUint64(hours)); err != nil {
		c.setMessage("Unable to book office: " + err.Error())
		return err
	}
	c.refreshQuiet(ctx, id)
	c.setMessage("Office booked successfully!")
	c.refreshEarningsQuiet(ctx)
	return nil
}

// ReturnOffice ends the active account's booking of office id.
func (c *Client) ReturnOffice(ctx context.Context, id uint64) error {
	c.setMessage("")
	if _, err := c.s.Invoke(ctx, MethodReturnOffice, nil, idArg(id)); err != nil {
		c.setMessage("Unable to return office: " + err.Error())
		return err
	}
	c.refreshQuiet(ctx, id)
	c.setMessage("Office returned successfully!")
	c.refreshEarningsQuiet(ctx)
	return nil
}

// WithdrawEarnings pays out the active account's accrued earnings.
func (c *Client) WithdrawEarnings(ctx context.Context) error {
	c.setMessage("")
	if _, err := c.s.Invoke(ctx, MethodWithdrawEarnings, nil); err != nil {
		c.setMessage("Unable to withdraw earnings: " + err.Error())
		return err
	}
	c.setMessage("Earnings withdrawn successfully!")
	c.refreshEarningsQuiet(ctx)
	return nil
}

// CheckAvailability reads office id into the mirror.
func (c *Client) CheckAvailability(ctx context.Context, id uint64) (Office, error) {
	o, err := session.Refresh(ctx, c.s, c.offices, id, func(ctx context.Context, h *contract.Handle) (Office, error) {
		return readOffice(ctx, h, id)
	})
	if err != nil {
		c.setMessage("Error fetching office availability: " + err.Error())
		return Office{}, err
	}
	return o, nil
}

// RefreshEarnings reads the active account's earnings into the mirror.
func (c *Client) RefreshEarnings(ctx context.Context) (*big.Int, error) {
	acct, ok := c.s.Account()
	if !ok {
		_, err := c.s.Handle()
		return nil, err
	}
	v, err := session.Refresh(ctx, c.s, c.earnings, acct, func(ctx context.Context, h *contract.Handle) (*big.Int, error) {
		out, err := h.Call(ctx, MethodEarnings, acct)
		if err != nil {
			return nil, err
		}
		return out[0].(*big.Int), nil
	})
	if err != nil {
		c.setMessage("Error fetching earnings: " + err.Error())
		return nil, err
	}
	return v, nil
}

// Offices returns every office read so far, keyed by id.
func (c *Client) Offices() map[uint64]Office {
	return c.offices.Snapshot()
}

// Office returns the mirrored view of office id.
func (c *Client) Office(id uint64) (Office, bool) {
	return c.offices.Get(id)
}

// Earnings returns the mirrored earnings of the active account.
func (c *Client) Earnings() (*big.Int, bool) {
	acct, ok := c.s.Account()
	if !ok {
		return nil, false
	}
	return c.earnings.Get(acct)
}

// Message returns the outcome of the last operation.
func (c *Client) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Client) setMessage(m string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = m
}

// read fetches office id without touching the mirror.
func (c *Client) read(ctx context.Context, id uint64) (Office, error) {
	h, err := c.s.Handle()
	if err != nil {
		return Office{}, err
	}
	return readOffice(ctx, h, id)
}

func (c *Client) refreshQuiet(ctx context.Context, id uint64) {
	read := func(ctx context.Context, h *contract.Handle) (Office, error) { return readOffice(ctx, h, id) }
	session.Refresh(ctx, c.s, c.offices, id, read) //nolint:errcheck
}

func (c *Client) refreshEarningsQuiet(ctx context.Context) {
	msg := c.Message()
	c.RefreshEarnings(ctx) //nolint:errcheck
	c.setMessage(msg)
}

func readOffice(ctx context.Context, h *contract.Handle, id uint64) (Office, error) {
	out, err := h.Call(ctx, MethodAvailability, idArg(id))
	if err != nil {
		return Office{}, err
	}
	if len(out) != 4 {
		return Office{}, fmt.Errorf("%s returned %d values, want 4", MethodAvailability, len(out))
	}
	return Office{
		ID:           id,
		Name:         out[0].(string),
		Booked:       out[1].(bool),
		PricePerHour: out[2].(*big.Int),
		Owner:        out[3].(common.Address),
	}, nil
}

func idArg(id uint64) *big.Int { return new(big.Int).SetUint64(id) }
