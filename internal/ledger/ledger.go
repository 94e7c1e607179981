// Package ledger owns per-user credit balances. Every operation is a
// read-modify-write of the single balance document in the shared store;
// the mutex keeps those cycles from interleaving across handlers.
package ledger

import (
	"sync"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/kvstore"
)

// Update is delivered to subscribers after a successful Spend or Add.
type Update struct {
	Email   string
	Balance int
}

// Ledger maintains the email → balance mapping. Balances never go negative:
// a spend that would overdraw is rejected, not clamped, and absence of a
// record reads as zero.
type Ledger struct {
	store kvstore.Store
	log   zerolog.Logger

	mu   sync.Mutex
	subs map[int]chan Update
	next int
}

// New creates a Ledger over the given store.
func New(store kvstore.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log.With().Str("component", "ledger").Logger(),
		subs:  make(map[int]chan Update),
	}
}

// Balance returns the current balance for email, zero when no record exists.
func (l *Ledger) Balance(email string) int {
	if email == "" {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()[email]
}

// Cost returns the per-message cost for a model, with a fixed default for
// unknown identifiers.
func (l *Ledger) Cost(modelID string) int {
	if c, ok := domain.MessageCosts[modelID]; ok {
		return c
	}
	return domain.DefaultMessageCost
}

// CanAfford reports whether email's balance covers one message to modelID.
func (l *Ledger) CanAfford(email, modelID string) bool {
	return l.Balance(email) >= l.Cost(modelID)
}

// Spend decrements email's balance by amount. It reports false without
// mutating anything when email is empty, amount is not positive, or the
// balance does not cover the amount. This is the only path that decreases
// a balance.
func (l *Ledger) Spend(email string, amount int) bool {
	if email == "" || amount <= 0 {
		return false
	}
	l.mu.Lock()
	all := l.load()
	bal := all[email]
	if bal < amount {
		l.mu.Unlock()
		return false
	}
	all[email] = bal - amount
	l.store.Set(kvstore.KeyCredits, all)
	l.notify(Update{Email: email, Balance: all[email]})
	l.mu.Unlock()

	l.log.Debug().Str("email", email).Int("amount", amount).Int("balance", bal-amount).Msg("credits spent")
	return true
}

// Add increments (or initializes) email's balance by amount. It reports
// false without mutating anything when email is empty or amount is not
// positive.
func (l *Ledger) Add(email string, amount int) bool {
	if email == "" || amount <= 0 {
		return false
	}
	l.mu.Lock()
	all := l.load()
	all[email] += amount
	bal := all[email]
	l.store.Set(kvstore.KeyCredits, all)
	l.notify(Update{Email: email, Balance: bal})
	l.mu.Unlock()

	l.log.Debug().Str("email", email).Int("amount", amount).Int("balance", bal).Msg("credits added")
	return true
}

// Subscribe registers a listener for balance changes. The returned cancel
// function releases the subscription; updates are dropped rather than
// blocking when the listener falls behind.
func (l *Ledger) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 16)
	l.mu.Lock()
	id := l.next
	l.next++
	l.subs[id] = ch
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// load reads the balance document, treating a missing or malformed one as
// empty. Callers must hold l.mu.
func (l *Ledger) load() map[string]int {
	all := map[string]int{}
	l.store.Get(kvstore.KeyCredits, &all)
	return all
}

// notify fans the update out to subscribers. Callers must hold l.mu.
func (l *Ledger) notify(u Update) {
	for _, ch := range l.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
