// Package tui renders the live balance view.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/dinar/internal/balance"
	"github.com/Veraticus/dinar/internal/tui/themes"
)

// BalanceProvider is the part of balance.Provider the view depends on.
type BalanceProvider interface {
	Snapshot() balance.Snapshot
	Subscribe(fn func(balance.Snapshot)) func()
	Refresh(ctx context.Context) error
}

// Model holds the balance view state.
type Model struct {
	ctx         context.Context
	provider    BalanceProvider
	updates     chan struct{}
	unsubscribe func()
	theme       themes.Theme
	keymap      KeyMap
	help        help.Model
	spinner     spinner.Model
	snapshot    balance.Snapshot
	width       int
	quitting    bool
}

// NewModel subscribes to provider and returns a view bound to it. The
// subscription is released when the view quits.
func NewModel(ctx context.Context, provider BalanceProvider, theme themes.Theme) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Spinner

	// Notifications coalesce; the model always reads the latest snapshot.
	updates := make(chan struct{}, 1)
	unsubscribe := provider.Subscribe(func(balance.Snapshot) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	return Model{
		ctx:         ctx,
		provider:    provider,
		updates:     updates,
		unsubscribe: unsubscribe,
		theme:       theme,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		spinner:     s,
		snapshot:    provider.Snapshot(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForSnapshot())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			m.unsubscribe()
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case snapshotMsg:
		m.snapshot = msg.snapshot
		return m, m.waitForSnapshot()

	case refreshDoneMsg:
		// Failures already arrive through the snapshot.
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// waitForSnapshot blocks until the provider publishes, then hands the
// newest snapshot to Update.
func (m Model) waitForSnapshot() tea.Cmd {
	updates := m.updates
	provider := m.provider
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case <-updates:
			return snapshotMsg{snapshot: provider.Snapshot()}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) refresh() tea.Cmd {
	provider := m.provider
	ctx := m.ctx
	return func() tea.Msg {
		return refreshDoneMsg{err: provider.Refresh(ctx)}
	}
}
