package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3dapp/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// PageAction is one operation offered once the contract is bound.
type PageAction struct {
	Key    string // key that triggers it, e.g. "d"
	Label  string
	Prompt string // when set, the page asks for input before running
	Run    func(ctx context.Context, input string) error
}

// PageConfig describes a dapp page.
type PageConfig struct {
	Title   string
	Network string
	Session *session.Session
	Actions []PageAction

	// Refresh reloads mirrored contract state; it runs after every bind.
	Refresh func(ctx context.Context) error
	// Details lists mirrored state to show while bound.
	Details func() [][2]string
	// Message returns the outcome of the last action.
	Message func() string
	// Timeout bounds each wallet round trip; zero means no limit.
	Timeout time.Duration
	// WatchInterval polls the wallet for account switches; zero disables it.
	WatchInterval time.Duration
}

type (
	pageBoundMsg struct {
		err      error
		explicit bool // from a connect key press rather than the silent restore
	}
	pageActionMsg  struct{ err error }
	pageTickMsg    struct{}
	pageAccountMsg struct {
		change session.AccountChange
		ch     <-chan session.AccountChange
	}
)

// PageModel is the Bubble Tea model for a single-contract dapp page. It shows
// an install prompt without a provider, a connect prompt until an account is
// authorized, and the contract actions once bound.
type PageModel struct {
	cfg    PageConfig
	ctx    context.Context
	cancel context.CancelFunc

	busy    string
	frame   int
	err     error
	lastErr error // outcome of the last action, styles the message line
	prompt  *PageAction
	input   string

	Quitting bool
}

// NewPage returns a page for cfg.
func NewPage(cfg PageConfig) PageModel {
	ctx, cancel := context.WithCancel(context.Background())
	return PageModel{cfg: cfg, ctx: ctx, cancel: cancel}
}

func (m PageModel) Init() tea.Cmd {
	s := m.cfg.Session
	if !s.HasProvider() {
		return nil
	}
	var cmds []tea.Cmd
	if s.State() != session.Bound {
		cmds = append(cmds, m.restoreCmd())
	}
	if m.cfg.WatchInterval > 0 {
		cmds = append(cmds, waitAccount(s.WatchAccounts(m.ctx, m.cfg.WatchInterval)))
	}
	return tea.Batch(cmds...)
}

func (m PageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != nil {
			return m.updateInput(msg)
		}
		return m.updateKey(msg)

	case pageBoundMsg:
		m.busy = ""
		if msg.err != nil && (msg.explicit || m.cfg.Session.State() != session.Unconnected) {
			m.err = msg.err
		} else {
			m.err = nil
		}

	case pageActionMsg:
		m.busy = ""
		m.lastErr = msg.err
		m.err = nil
		if msg.err != nil && (m.cfg.Message == nil || m.cfg.Message() == "") {
			m.err = msg.err
		}

	case pageTickMsg:
		if m.busy != "" {
			m.frame++
			return m, pageTick()
		}

	case pageAccountMsg:
		next := waitAccount(msg.ch)
		if msg.change.State == session.Bound && m.cfg.Refresh != nil {
			m.busy = "Account changed, refreshing…"
			return m, tea.Batch(next, m.refreshCmd(), pageTick())
		}
		return m, next
	}
	return m, nil
}

// waitAccount delivers the next account change from ch.
func waitAccount(ch <-chan session.AccountChange) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return pageAccountMsg{change: change, ch: ch}
	}
}

func (m PageModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c", "esc":
		m.Quitting = true
		m.cancel()
		return m, tea.Quit
	}
	if m.busy != "" || !m.cfg.Session.HasProvider() {
		return m, nil
	}

	s := m.cfg.Session
	switch {
	case key == "c" && s.State() != session.Bound:
		m.busy = "Waiting for the wallet…"
		m.err = nil
		return m, tea.Batch(m.connectCmd(), pageTick())
	case key == "r" && s.State() == session.Bound:
		m.busy = "Refreshing…"
		return m, tea.Batch(m.refreshCmd(), pageTick())
	}

	if s.State() != session.Bound {
		return m, nil
	}
	for i := range m.cfg.Actions {
		a := &m.cfg.Actions[i]
		if a.Key != key {
			continue
		}
		if a.Prompt != "" {
			m.prompt = a
			m.input = ""
			return m, nil
		}
		return m.start(a, "")
	}
	return m, nil
}

func (m PageModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.prompt = nil
		m.input = ""
	case tea.KeyEnter:
		a, in := m.prompt, strings.TrimSpace(m.input)
		m.prompt = nil
		m.input = ""
		return m.start(a, in)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m PageModel) start(a *PageAction, input string) (tea.Model, tea.Cmd) {
	m.busy = a.Label + "…"
	m.err = nil
	run := a.Run
	return m, tea.Batch(func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		return pageActionMsg{err: run(ctx, input)}
	}, pageTick())
}

func (m PageModel) opContext() (context.Context, context.CancelFunc) {
	if m.cfg.Timeout > 0 {
		return context.WithTimeout(m.ctx, m.cfg.Timeout)
	}
	return context.WithCancel(m.ctx)
}

// restoreCmd adopts an already-authorized account without prompting.
func (m PageModel) restoreCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		_, ok, err := m.cfg.Session.Restore(ctx)
		if err != nil || !ok {
			return pageBoundMsg{err: err}
		}
		return pageBoundMsg{err: m.bindAndRefresh(ctx)}
	}
}

func (m PageModel) connectCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		if _, err := m.cfg.Session.Authorize(ctx); err != nil {
			return pageBoundMsg{err: err, explicit: true}
		}
		return pageBoundMsg{err: m.bindAndRefresh(ctx), explicit: true}
	}
}

func (m PageModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.opContext()
		defer cancel()
		if m.cfg.Refresh == nil {
			return pageActionMsg{}
		}
		return pageActionMsg{err: m.cfg.Refresh(ctx)}
	}
}

func (m PageModel) bindAndRefresh(ctx context.Context) error {
	if _, err := m.cfg.Session.Bind(); err != nil {
		return err
	}
	if m.cfg.Refresh != nil {
		m.cfg.Refresh(ctx) //nolint:errcheck
	}
	return nil
}

func pageTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return pageTickMsg{} })
}

func (m PageModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	title := m.cfg.Title
	if m.cfg.Network != "" {
		title += "  ·  " + m.cfg.Network
	}
	sb.WriteString(StyleTitle.Render(title) + "\n")

	s := m.cfg.Session
	switch {
	case !s.HasProvider():
		sb.WriteString(Warn("Please install a wallet to use this page.") + "\n")
		sb.WriteString(Hint("Start a local node or open Frame, then run w3dapp page again.") + "\n\n")
		sb.WriteString(StyleMeta.Render("  [ q ] quit") + "\n")
		return sb.String()

	case s.State() != session.Bound:
		sb.WriteString(Info("Connect your wallet to use this dapp.") + "\n\n")
		sb.WriteString(m.statusLines())
		sb.WriteString(StyleMeta.Render("  [ c ] connect wallet   [ q ] quit") + "\n")
		return sb.String()
	}

	acct, _ := s.Account()
	pairs := [][2]string{
		{"Account", acct.Hex()},
		{"Contract", s.Contract().Hex()},
	}
	if m.cfg.Details != nil {
		pairs = append(pairs, m.cfg.Details()...)
	}
	sb.WriteString(KeyValueBlock("", pairs) + "\n\n")

	for _, a := range m.cfg.Actions {
		sb.WriteString(fmt.Sprintf("  %s %s\n", StyleInfo.Render("[ "+a.Key+" ]"), a.Label))
	}
	sb.WriteString(fmt.Sprintf("  %s %s\n\n", StyleMeta.Render("[ r ]"), "refresh"))

	if m.prompt != nil {
		sb.WriteString("  " + StyleWarning.Render(m.prompt.Prompt+": ") + m.input + "█\n")
		sb.WriteString(StyleMeta.Render("  [ Enter ] submit   [ Esc ] cancel") + "\n")
		return sb.String()
	}

	if m.cfg.Message != nil && m.busy == "" {
		if msg := m.cfg.Message(); msg != "" {
			if m.lastErr != nil {
				sb.WriteString(Err(msg) + "\n")
			} else {
				sb.WriteString(Success(msg) + "\n")
			}
		}
	}
	sb.WriteString(m.statusLines())
	sb.WriteString(StyleMeta.Render("  [ q ] quit") + "\n")
	return sb.String()
}

func (m PageModel) statusLines() string {
	var sb strings.Builder
	if m.busy != "" {
		frame := StyleChain.Render(spinnerFrames[m.frame%len(spinnerFrames)])
		sb.WriteString(frame + "  " + m.busy + "\n\n")
	}
	if m.err != nil {
		sb.WriteString(FormatError(m.err) + "\n\n")
	}
	return sb.String()
}

// RunPage runs the page full screen until the user quits.
func RunPage(cfg PageConfig) error {
	m := NewPage(cfg)
	defer m.cancel()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	return nil
}
