// Package notifier is the fire-and-forget outbound notification
// collaborator. Delivery failures are logged and never block the pipeline.
package notifier

type Notifier interface {
	Notify(audience []string, subject, message, link string)
}

// Noop discards every notification. Used when no SMTP host is configured
// and in tests.
type Noop struct{}

func (Noop) Notify(audience []string, subject, message, link string) {}
