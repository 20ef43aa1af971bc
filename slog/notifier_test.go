package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/sourcebook"
	sbslog "github.com/fwojciec/sourcebook/slog"
	"github.com/stretchr/testify/assert"
)

func TestNotifier_Notify(t *testing.T) {
	t.Parallel()

	t.Run("logs error notices at error level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		notifier := sbslog.NewNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

		notifier.Notify(sourcebook.NotificationError, "Summary generation failed: no API key configured")

		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, "Summary generation failed")
	})

	t.Run("logs info notices at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		notifier := sbslog.NewNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

		notifier.Notify(sourcebook.NotificationInfo, "Summary ready")

		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "Summary ready")
	})
}
