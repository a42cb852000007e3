package tui

import "github.com/Veraticus/dinar/internal/balance"

// snapshotMsg carries the provider state into the update loop.
type snapshotMsg struct {
	snapshot balance.Snapshot
}

// refreshDoneMsg reports the outcome of a user-triggered refresh.
type refreshDoneMsg struct {
	err error
}
