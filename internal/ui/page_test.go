package ui

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/chain/chaintest"
	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/Mohsinsiddi/w3dapp/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pageATM     = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	pageAccount = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
)

func pageSession(t *testing.T, p *chaintest.Provider) *session.Session {
	t.Helper()
	set, err := contract.BuiltinMethods("atm")
	require.NoError(t, err)
	s := session.New(session.Config{Address: pageATM, Methods: set, PollInterval: time.Millisecond})
	if p != nil {
		s.SetProvider(p)
	}
	return s
}

// drain runs cmd and returns the page messages it produces, skipping
// spinner ticks.
func drain(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(t, c)...)
		}
		return out
	case pageTickMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func feed(t *testing.T, m tea.Model, msgs ...tea.Msg) PageModel {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(PageModel)
}

func press(t *testing.T, m PageModel, key string) (PageModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(PageModel), cmd
}

func TestPageWithoutProvider(t *testing.T) {
	m := NewPage(PageConfig{Title: "ATM", Session: pageSession(t, nil)})

	assert.Nil(t, m.Init(), "nothing to restore without a provider")
	assert.Contains(t, m.View(), "Please install a wallet")
	assert.NotContains(t, m.View(), "connect wallet")

	m, cmd := press(t, m, "c")
	assert.Nil(t, cmd, "connect is disabled without a provider")
	assert.Empty(t, m.busy)
}

func TestPageConnectBindsSession(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{})
	p.Result("eth_requestAccounts", []common.Address{pageAccount})
	s := pageSession(t, p)

	refreshed := 0
	m := NewPage(PageConfig{
		Title:   "ATM",
		Session: s,
		Refresh: func(context.Context) error { refreshed++; return nil },
		Details: func() [][2]string { return [][2]string{{"Balance", "42"}} },
	})

	m = feed(t, m, drain(t, m.Init())...)
	assert.Equal(t, session.Unconnected, s.State())
	assert.Nil(t, m.err, "silent restore does not surface an error")
	assert.Contains(t, m.View(), "connect wallet")
	assert.Zero(t, p.Count("eth_requestAccounts"))

	m, cmd := press(t, m, "c")
	require.NotNil(t, cmd)
	assert.NotEmpty(t, m.busy)
	m = feed(t, m, drain(t, cmd)...)

	assert.Equal(t, session.Bound, s.State())
	assert.Equal(t, 1, p.Count("eth_requestAccounts"))
	assert.Equal(t, 1, refreshed)
	assert.Empty(t, m.busy)
	view := m.View()
	assert.Contains(t, view, pageAccount.Hex())
	assert.Contains(t, view, "42")
}

func TestPageRestoreAdoptsAuthorizedAccount(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{pageAccount})
	s := pageSession(t, p)

	m := NewPage(PageConfig{Title: "ATM", Session: s})
	m = feed(t, m, drain(t, m.Init())...)

	assert.Equal(t, session.Bound, s.State())
	assert.Zero(t, p.Count("eth_requestAccounts"), "restore never prompts")
	assert.Contains(t, m.View(), pageAccount.Hex())
}

func TestPageConnectRejected(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{})
	p.Fail("eth_requestAccounts", chaintest.ErrUserRejected)
	s := pageSession(t, p)

	m := NewPage(PageConfig{Title: "ATM", Session: s})
	m, cmd := press(t, m, "c")
	m = feed(t, m, drain(t, cmd)...)

	assert.Equal(t, session.Unconnected, s.State())
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "Request rejected")
}

func TestPageActionWithPrompt(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{pageAccount})
	s := pageSession(t, p)

	var got string
	message := ""
	m := NewPage(PageConfig{
		Title:   "ATM",
		Session: s,
		Actions: []PageAction{{
			Key: "d", Label: "deposit", Prompt: "Amount",
			Run: func(_ context.Context, in string) error {
				got = in
				message = "Deposit of " + in + " confirmed"
				return nil
			},
		}},
		Message: func() string { return message },
	})
	m = feed(t, m, drain(t, m.Init())...)
	require.Equal(t, session.Bound, s.State())

	m, cmd := press(t, m, "d")
	assert.Nil(t, cmd)
	require.NotNil(t, m.prompt)
	assert.Contains(t, m.View(), "Amount")

	m, _ = press(t, m, "5")
	m, cmd = press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.Nil(t, m.prompt)
	m = feed(t, m, drain(t, cmd)...)

	assert.Equal(t, "5", got)
	assert.Contains(t, m.View(), "Deposit of 5 confirmed")
}

func TestPageActionFailureShowsMessage(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{pageAccount})
	s := pageSession(t, p)

	m := NewPage(PageConfig{
		Title:   "Office",
		Session: s,
		Actions: []PageAction{{
			Key: "w", Label: "withdraw earnings",
			Run: func(context.Context, string) error { return errors.New("nothing to withdraw") },
		}},
		Message: func() string { return "Unable to withdraw earnings: nothing to withdraw" },
	})
	m = feed(t, m, drain(t, m.Init())...)

	m, cmd := press(t, m, "w")
	m = feed(t, m, drain(t, cmd)...)
	assert.Error(t, m.lastErr)
	assert.Contains(t, m.View(), "Unable to withdraw earnings")
}

func TestPagePromptCancel(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{pageAccount})
	s := pageSession(t, p)

	ran := false
	m := NewPage(PageConfig{
		Session: s,
		Actions: []PageAction{{Key: "b", Label: "book", Prompt: "Office id", Run: func(context.Context, string) error {
			ran = true
			return nil
		}}},
	})
	m = feed(t, m, drain(t, m.Init())...)

	m, _ = press(t, m, "b")
	m, _ = press(t, m, "7")
	m, cmd := press(t, m, "esc")
	assert.Nil(t, cmd)
	assert.Nil(t, m.prompt)
	assert.False(t, ran)
}

func TestPageActionsIgnoredUntilBound(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{})
	s := pageSession(t, p)

	m := NewPage(PageConfig{
		Session: s,
		Actions: []PageAction{{Key: "d", Label: "deposit", Run: func(context.Context, string) error {
			t.Fatal("action ran before bind")
			return nil
		}}},
	})
	_, cmd := press(t, m, "d")
	assert.Nil(t, cmd)
}

func TestPageQuitCancelsWork(t *testing.T) {
	m := NewPage(PageConfig{Session: pageSession(t, nil)})
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	pm := next.(PageModel)
	assert.True(t, pm.Quitting)
	assert.Error(t, pm.ctx.Err())
	assert.Empty(t, pm.View())
}

func TestPageTimeout(t *testing.T) {
	p := chaintest.NewProvider()
	p.Result("eth_accounts", []common.Address{pageAccount})
	s := pageSession(t, p)

	var deadline bool
	m := NewPage(PageConfig{
		Session: s,
		Timeout: time.Minute,
		Actions: []PageAction{{Key: "x", Label: "check", Run: func(ctx context.Context, _ string) error {
			_, deadline = ctx.Deadline()
			return nil
		}}},
		Details: func() [][2]string { return [][2]string{{"Balance", new(big.Int).String()}} },
	})
	m = feed(t, m, drain(t, m.Init())...)
	_, cmd := press(t, m, "x")
	drain(t, cmd)
	assert.True(t, deadline)
}

func TestPageFollowsAccountSwitch(t *testing.T) {
	other := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	var current atomic.Value
	current.Store(pageAccount)

	p := chaintest.NewProvider()
	p.Handle("eth_accounts", func([]json.RawMessage) (any, error) {
		return []common.Address{current.Load().(common.Address)}, nil
	})
	s := pageSession(t, p)

	refreshed := 0
	m := NewPage(PageConfig{
		Session:       s,
		WatchInterval: 5 * time.Millisecond,
		Refresh:       func(context.Context) error { refreshed++; return nil },
	})
	defer m.cancel()

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok, "restore and watch run together")
	require.Len(t, batch, 2)

	m = feed(t, m, batch[0]())
	require.Equal(t, session.Bound, s.State())
	require.Equal(t, 1, refreshed)

	current.Store(other)
	msg := batch[1]()
	change, ok := msg.(pageAccountMsg)
	require.True(t, ok)
	assert.Equal(t, other, change.change.To)

	next, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.NotEmpty(t, next.(PageModel).busy)

	acct, _ := s.Account()
	assert.Equal(t, other, acct)
	assert.Equal(t, session.Bound, s.State(), "session rebinds to the new account")
}
