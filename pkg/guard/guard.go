package guard

import (
	"errors"
	"sync"
)

// ErrHeld is returned when a key is entered while an outer call for the same
// key is still running.
var ErrHeld = errors.New("guard: re-entrant call")

// Guard hands out non-reentrant critical sections keyed by account. Settlement
// may invoke external transfer hooks; a hook calling back into the engine must
// be rejected, not blocked, so a half-updated ledger is never observable.
type Guard struct {
	mu   sync.Mutex
	held map[string]bool
}

func New() *Guard {
	return &Guard{held: make(map[string]bool)}
}

// Enter claims the key. The caller must Exit with the same key once the
// operation commits or aborts.
func (g *Guard) Enter(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.held[key] {
		return ErrHeld
	}

	g.held[key] = true
	return nil
}

// Exit releases the key.
func (g *Guard) Exit(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.held, key)
}
