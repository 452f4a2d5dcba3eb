package notify

import "github.com/gen2brain/beeep"

// Sender delivers a notification to the operating system.
type Sender interface {
	Send(n Notification) error
}

// NewSender returns the platform sender. beeep covers macOS, Linux, and
// Windows natively and degrades to an error elsewhere.
func NewSender() Sender {
	return &desktopSender{}
}

type desktopSender struct{}

func (s *desktopSender) Send(n Notification) error {
	return beeep.Notify(n.Title, n.Message, "")
}
