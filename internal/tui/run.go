package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/dinar/internal/tui/themes"
)

// Run shows the balance view until the user quits or ctx is canceled.
func Run(ctx context.Context, provider BalanceProvider) error {
	if provider == nil {
		return fmt.Errorf("balance provider is required")
	}

	m := NewModel(ctx, provider, themes.Default)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("balance view failed: %w", err)
	}
	return nil
}
