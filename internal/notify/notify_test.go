package notify

import (
	"errors"
	"testing"

	"github.com/gen2brain/beeep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/logger"
)

type sent struct {
	kind           string
	title, message string
}

type recorder struct {
	sent []sent
	err  error
}

func (r *recorder) attach(n *Notifier) {
	n.notify = func(title, message string) error {
		r.sent = append(r.sent, sent{"notify", title, message})
		return r.err
	}
	n.alert = func(title, message string) error {
		r.sent = append(r.sent, sent{"alert", title, message})
		return r.err
	}
}

func TestNotifier_Disabled(t *testing.T) {
	rec := &recorder{}
	n := New(false, logger.NewNop())
	rec.attach(n)

	n.DownloadComplete("axelf.xm")
	n.DownloadFailed("axelf.xm", "boom")
	assert.Empty(t, rec.sent)
}

func TestNotifier_KindSelectsDelivery(t *testing.T) {
	rec := &recorder{}
	n := New(true, logger.NewNop())
	rec.attach(n)

	n.DownloadComplete("axelf.xm")
	n.DownloadFailed("x.mod", "checksum mismatch")
	n.DownloadFailed("y.mod", "")

	require.Len(t, rec.sent, 3)
	assert.Equal(t, sent{"notify", "Download Complete", "axelf.xm"}, rec.sent[0])
	assert.Equal(t, sent{"alert", "Download Failed", "x.mod: checksum mismatch"}, rec.sent[1])
	assert.Equal(t, sent{"alert", "Download Failed", "y.mod"}, rec.sent[2])
}

func TestNotifier_FailuresAreSwallowed(t *testing.T) {
	rec := &recorder{err: errors.New("no notification daemon")}
	n := New(true, nil)
	rec.attach(n)

	assert.NotPanics(t, func() { n.DownloadFailed("axelf.xm", "checksum mismatch") })
	assert.Len(t, rec.sent, 1)
}

func TestNotifier_FromConfig(t *testing.T) {
	assert.True(t, FromConfig(config.DownloadConfig{Notifications: true}, nil).enabled)
	assert.False(t, FromConfig(config.DownloadConfig{}, nil).enabled)
	assert.Equal(t, config.AppName, beeep.AppName)
}
