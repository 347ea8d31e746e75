// Package atm is the client for the ATM demo contract: deposit, withdraw and
// a mirrored balance for the connected account.
package atm

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	"github.com/ethereum/go-ethereum/common"
)

// Method names of the ATM contract.
const (
	MethodDeposit    = "deposit"
	MethodWithdraw   = "withdraw"
	MethodGetBalance = "getBalance"
)

// History entry types.
const (
	TypeDeposit  = "Deposit"
	TypeWithdraw = "Withdraw"
)

// Entry is one confirmed deposit or withdrawal.
type Entry struct {
	Type   string
	Amount *big.Int
}

// Client drives the ATM contract through a session.
type Client struct {
	s       *session.Session
	balance *session.Mirror[common.Address, *big.Int]

	mu      sync.Mutex
	history []Entry
	message string
}

// New returns a client for the session's ATM contract.
func New(s *session.Session) *Client {
	return &Client{s: s, balance: session.NewMirror[common.Address, *big.Int]()}
}

// Deposit adds amount to the balance and waits for confirmation.
func (c *Client) Deposit(ctx context.Context, amount *big.Int) error {
	return c.move(ctx, MethodDeposit, TypeDeposit, "deposit", amount)
}

// Withdraw takes amount from the balance and waits for confirmation.
func (c *Client) Withdraw(ctx context.Context, amount *big.Int) error {
	return c.move(ctx, MethodWithdraw, TypeWithdraw, "withdraw", amount)
}

func (c *Client) move(ctx context.Context, method, kind, verb string, amount *big.Int) error {
	c.setMessage("")
	if _, err := c.s.Invoke(ctx, method, nil, amount); err != nil {
		c.setMessage(fmt.Sprintf("Unable to %s: %s", verb, err))
		return err
	}

	c.mu.Lock()
	c.history = append(c.history, Entry{Type: kind, Amount: new(big.Int).Set(amount)})
	c.mu.Unlock()
	c.setMessage(fmt.Sprintf("%s of %s confirmed", kind, amount))

	c.RefreshBalance(ctx) //nolint:errcheck
	return nil
}

// RefreshBalance reads the balance from the contract into the mirror.
func (c *Client) RefreshBalance(ctx context.Context) (*big.Int, error) {
	acct, ok := c.s.Account()
	if !ok {
		_, err := c.s.Handle()
		return nil, err
	}
	v, err := session.Refresh(ctx, c.s, c.balance, acct, readBalance)
	if err != nil {
		c.setMessage("Error fetching balance: " + err.Error())
		return nil, err
	}
	return v, nil
}

func readBalance(ctx context.Context, h *contract.Handle) (*big.Int, error) {
	out, err := h.Call(ctx, MethodGetBalance)
	if err != nil {
		return nil, err
	}
	return out[0].(*big.Int), nil
}

// Balance returns the mirrored balance of the active account.
func (c *Client) Balance() (*big.Int, bool) {
	acct, ok := c.s.Account()
	if !ok {
		return nil, false
	}
	return c.balance.Get(acct)
}

// History returns the confirmed deposits and withdrawals, oldest first.
func (c *Client) History() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.history...)
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
