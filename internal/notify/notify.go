// Package notify sends a desktop notification when a workflow run
// finishes. Notifications are opt-in and best effort: failures to deliver
// never affect the run outcome.
package notify

import (
	"fmt"
	"os"
	"time"
)

// Notification is a single desktop notification.
type Notification struct {
	// Title is the notification title, normally "atx".
	Title string
	// Message is the body text.
	Message string
	// Success marks whether the underlying run succeeded.
	Success bool
}

// Config controls when run notifications fire.
type Config struct {
	// Enabled is the master switch. Defaults to off.
	Enabled bool
	// MinDuration suppresses notifications for quick successful runs.
	// Failures notify regardless of duration.
	MinDuration time.Duration
}

// Notifier dispatches run-completion notifications.
type Notifier struct {
	config Config
	sender Sender
}

// NewNotifier creates a notifier using the platform sender.
func NewNotifier(config Config) *Notifier {
	return &Notifier{config: config, sender: NewSender()}
}

// NewNotifierWithSender creates a notifier with a custom sender. Used by
// tests.
func NewNotifierWithSender(config Config, sender Sender) *Notifier {
	return &Notifier{config: config, sender: sender}
}

// RunFinished sends a notification for a completed run when the
// configuration allows it. Successful runs shorter than MinDuration stay
// quiet; failures notify regardless of duration.
func (n *Notifier) RunFinished(workflow string, success bool, duration time.Duration) {
	if n == nil || !n.config.Enabled {
		return
	}
	if inCI() {
		return
	}
	if success && duration < n.config.MinDuration {
		return
	}

	message := fmt.Sprintf("Workflow %q completed in %s", workflow, duration.Round(time.Second))
	if !success {
		message = fmt.Sprintf("Workflow %q failed after %s", workflow, duration.Round(time.Second))
	}

	// A wedged notification tool must not hold the process open; the
	// send gets a hard deadline.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = n.sender.Send(Notification{Title: "atx", Message: message, Success: success})
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
	}
}

// ciEnvVars are environment variables that mark a CI session. RunFinished
// never notifies under CI.
var ciEnvVars = []string{
	"CI",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"CIRCLECI",
	"TRAVIS",
	"JENKINS_URL",
	"BUILDKITE",
	"DRONE",
	"TEAMCITY_VERSION",
}

func inCI() bool {
	for _, v := range ciEnvVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}
