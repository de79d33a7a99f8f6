package listing

import "sync"

// Navigator abstracts the browser location bar: the one shared resource
// between the controller and back/forward navigation. Every filter mutation
// funnels through Navigate, and the resulting location change is the only
// trigger that schedules a refetch.
type Navigator interface {
	// Location returns the current query string (without a leading "?").
	Location() string
	// Navigate replaces the current query string and notifies listeners.
	Navigate(search string)
}

// MemoryNavigator is an in-process Navigator with a history stack, used by
// the CLI and by tests to stand in for a browser location bar.
type MemoryNavigator struct {
	mu       sync.Mutex
	history  []string
	onChange func(search string)
}

func NewMemoryNavigator(initial string) *MemoryNavigator {
	return &MemoryNavigator{history: []string{initial}}
}

// OnChange registers the single listener notified after each navigation.
func (n *MemoryNavigator) OnChange(fn func(search string)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

func (n *MemoryNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.history[len(n.history)-1]
}

func (n *MemoryNavigator) Navigate(search string) {
	n.mu.Lock()
	n.history = append(n.history, search)
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(search)
	}
}

// Back pops one history entry, mirroring the browser back button, and
// notifies the listener with the restored location.
func (n *MemoryNavigator) Back() {
	n.mu.Lock()
	if len(n.history) > 1 {
		n.history = n.history[:len(n.history)-1]
	}
	current := n.history[len(n.history)-1]
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(current)
	}
}

// History returns a copy of every location visited, oldest first.
func (n *MemoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.history))
	copy(out, n.history)
	return out
}
