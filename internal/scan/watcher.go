package scan

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mkessler/ablage/internal/vault"
)

// debounce window between the last inbox event and the triggered scan; drag
// and drop of many files arrives as a burst of events.
const scanDebounce = 500 * time.Millisecond

// Watch starts an fsnotify watcher on the vault inbox and runs a scan pass
// after each (debounced) burst of file events, until ctx is cancelled.
// Scan failures are logged and do not stop the watcher.
func Watch(ctx context.Context, scanner *Scanner, v *vault.FS, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	inbox := filepath.Join(v.Root(), vault.InboxDir)
	if err := w.Add(inbox); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("inbox", inbox))

	var scanTimer *time.Timer
	var scanCh <-chan time.Time

	schedule := func() {
		if scanTimer == nil {
			scanTimer = time.NewTimer(scanDebounce)
			scanCh = scanTimer.C
		} else {
			scanTimer.Reset(scanDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if scanTimer != nil {
				scanTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-scanCh:
			report, scanErr := scanner.Scan(ctx)
			if scanErr != nil {
				logger.Warn("watcher: scan failed", slog.String("error", scanErr.Error()))
				continue
			}
			logger.Info("watcher: scan pass done",
				slog.Int("moved", report.Moved),
				slog.Int("skipped", report.Skipped))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				logger.Debug("watcher: inbox event", slog.String("path", ev.Name))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
