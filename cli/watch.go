package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// debounceDelay collapses the bursts of events editors produce when saving.
const debounceDelay = 100 * time.Millisecond

// watch runs check once and again after every change of the files it read,
// until interrupted.
func (cmd *CheckCmd) watch(r *run, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(r.ctx, os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	w := &fileWatcher{watcher: watcher, watched: make(map[string]bool)}
	recheck := func() {
		files, err := cmd.check(ctx, r, stdout, stderr)
		var cmdErr *CommandError
		if err != nil && !errors.As(err, &cmdErr) && ctx.Err() == nil {
			printError(stderr, err.Error())
		}
		w.update(ctx, files)
		printInfof(stderr, "Watching %d file(s) for changes", len(w.watched))
	}

	recheck()
	return w.run(ctx, recheck)
}

// fileWatcher keeps the watch list in sync with the files a check read.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	watched map[string]bool
}

// update removes watches for files no longer read and (re)adds the rest.
// Files are re-added every time to catch files replaced by atomic saves.
func (w *fileWatcher) update(ctx context.Context, files []string) {
	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[f] = true
	}

	for f := range w.watched {
		if !current[f] {
			_ = w.watcher.Remove(f)
			delete(w.watched, f)
		}
	}

	for f := range current {
		if err := w.watcher.Add(f); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("path", f).Msg("failed to watch file")
			delete(w.watched, f)
			continue
		}
		w.watched[f] = true
	}
}

// run calls fn after every burst of relevant events, until ctx is done.
func (w *fileWatcher) run(ctx context.Context, fn func()) error {
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			// Remove and Rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			zerolog.Ctx(ctx).Debug().Str("path", event.Name).Stringer("op", event.Op).Msg("file changed")
			debounce = time.After(debounceDelay)

		case <-debounce:
			debounce = nil
			fn()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			zerolog.Ctx(ctx).Warn().Err(err).Msg("file watcher error")
		}
	}
}
