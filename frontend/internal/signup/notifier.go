package signup

import "sync"

// Notifier receives user-facing messages. Pages render them, the live lookup API returns
// them with the session state.
type Notifier interface {
	Error(msg string)
	Message(msg string)
}

// Collector is a Notifier that keeps every message in order.
type Collector struct {
	mu       sync.Mutex
	errors   []string
	messages []string
}

func (c *Collector) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
}

func (c *Collector) Message(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *Collector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}

func (c *Collector) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

// LastError is what a page shows in its single error slot.
func (c *Collector) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errors) == 0 {
		return ""
	}
	return c.errors[len(c.errors)-1]
}
