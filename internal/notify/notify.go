// Package notify sends best-effort desktop notifications.
package notify

import (
	"github.com/gen2brain/beeep"

	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/logger"
)

// Kind selects how loudly a notification is delivered
type Kind string

// Notification kinds
const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

func init() {
	beeep.AppName = config.AppName
}

// Notifier sends desktop notifications when enabled
type Notifier struct {
	enabled bool
	log     logger.Logger
	// notify and alert deliver the message; replaced in tests
	notify func(title, message string) error
	alert  func(title, message string) error
}

// New creates a notifier that only sends when enabled is true
func New(enabled bool, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Notifier{
		enabled: enabled,
		log:     log,
		notify:  func(title, message string) error { return beeep.Notify(title, message, "") },
		alert:   func(title, message string) error { return beeep.Alert(title, message, "") },
	}
}

// FromConfig creates a notifier from the download settings
func FromConfig(cfg config.DownloadConfig, log logger.Logger) *Notifier {
	return New(cfg.Notifications, log)
}

// DownloadComplete announces a finished module download
func (n *Notifier) DownloadComplete(filename string) {
	n.Send("Download Complete", filename, KindSuccess)
}

// DownloadFailed announces a failed module download
func (n *Notifier) DownloadFailed(filename, reason string) {
	msg := filename
	if reason != "" {
		msg += ": " + reason
	}
	n.Send("Download Failed", msg, KindError)
}

// Send delivers the notification. Errors also sound an alert.
// Failures are logged, never returned.
func (n *Notifier) Send(title, message string, kind Kind) {
	if !n.enabled {
		return
	}

	deliver := n.notify
	if kind == KindError {
		deliver = n.alert
	}
	if err := deliver(title, message); err != nil {
		n.log.Debug("Notification failed", logger.String("title", title), logger.Error(err))
	}
}
