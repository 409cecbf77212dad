package layout

import "sync"

// WorkQueue holds commands that must not run during a measurement pass.
//
// Commands are posted from anywhere (including other goroutines) and drained
// by the owner at a defined point, typically the start of the next measure.
type WorkQueue struct {
	mu      sync.Mutex
	pending []func()
}

// Post appends a command. Nil commands are ignored.
func (q *WorkQueue) Post(cmd func()) {
	if cmd == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, cmd)
	q.mu.Unlock()
}

// Len returns the number of pending commands.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain removes and returns all pending commands in posting order.
func (q *WorkQueue) Drain() []func() {
	q.mu.Lock()
	cmds := q.pending
	q.pending = nil
	q.mu.Unlock()
	return cmds
}
