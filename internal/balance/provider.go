// Package balance republishes the running balance to any number of
// observers. Totals are recomputed from storage on every reload and are never
// invalidated automatically: after a write, callers must call Refresh or the
// published totals go stale.
package balance

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
)

// Snapshot is the state observers see. Err holds the failure of the most
// recent reload, if any; Totals then still carry the last good values.
type Snapshot struct {
	Err     error
	Totals  model.Balance
	Loading bool
}

type observer struct {
	fn func(Snapshot)
	id int
}

// Provider holds the latest balance totals and a loading flag.
type Provider struct {
	source    service.BalanceSource
	state     Snapshot
	observers []observer
	nextID    int
	mu        sync.Mutex
}

// NewProvider returns a provider that reads totals from source. It starts in
// the loading state with zero totals.
func NewProvider(source service.BalanceSource) *Provider {
	return &Provider{
		source: source,
		state:  Snapshot{Loading: true},
	}
}

// Start triggers the initial reload in the background. The returned channel
// is closed once that reload finishes, successfully or not.
func (p *Provider) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Refresh(ctx)
	}()
	return done
}

// Refresh reloads the totals and blocks until the reload is published. On
// failure the error is logged, Loading is cleared and the previous totals
// are kept.
func (p *Provider) Refresh(ctx context.Context) error {
	p.publish(func(s *Snapshot) {
		s.Loading = true
	})

	totals, err := p.source.GetTotalBalance(ctx, nil)
	if err != nil {
		slog.Error("Failed to load balance", "error", err)
		p.publish(func(s *Snapshot) {
			s.Loading = false
			s.Err = err
		})
		return err
	}

	p.publish(func(s *Snapshot) {
		s.Totals = *totals
		s.Loading = false
		s.Err = nil
	})
	slog.Debug("Balance reloaded",
		"income", totals.TotalIncome.String(),
		"expense", totals.TotalExpense.String(),
		"balance", totals.Balance.String())
	return nil
}

// Snapshot returns the current state.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Subscribe registers fn to receive every published snapshot, starting with
// the current one. Calling the returned function unregisters it.
func (p *Provider) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.observers = append(p.observers, observer{id: id, fn: fn})
	current := p.state
	p.mu.Unlock()

	fn(current)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, o := range p.observers {
			if o.id == id {
				p.observers = append(p.observers[:i], p.observers[i+1:]...)
				return
			}
		}
	}
}

// publish applies change under the lock and notifies observers outside it.
func (p *Provider) publish(change func(*Snapshot)) {
	p.mu.Lock()
	change(&p.state)
	snapshot := p.state
	observers := make([]observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.Unlock()

	for _, o := range observers {
		o.fn(snapshot)
	}
}
