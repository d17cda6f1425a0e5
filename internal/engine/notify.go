package engine

import "fmt"

// Notification is an event broadcast to every registered listener.
type Notification int

const (
	// NotifyReexec is sent right before the process replaces itself.
	NotifyReexec Notification = iota
	// NotifyAbort is sent when a run is cancelled by the user.
	NotifyAbort
)

func (n Notification) String() string {
	switch n {
	case NotifyReexec:
		return "REEXEC"
	case NotifyAbort:
		return "ABORT"
	default:
		return fmt.Sprintf("NOTIFICATION(%d)", int(n))
	}
}

// NotificationHandler reacts to a notification. A returned error stops the
// broadcast and reaches the caller of Notify.
type NotificationHandler func(n Notification) error

// RegisterNotification adds handler; handlers run in registration order.
func (c *Context) RegisterNotification(handler NotificationHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, handler)
}

// Notify calls every registered handler synchronously.
func (c *Context) Notify(n Notification) error {
	c.mu.Lock()
	handlers := append([]NotificationHandler(nil), c.notifications...)
	c.mu.Unlock()

	c.Log.Debug("notify", "event", n.String(), "handlers", len(handlers))
	for _, handler := range handlers {
		if err := handler(n); err != nil {
			return fmt.Errorf("notification %s: %w", n, err)
		}
	}
	return nil
}
