package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/portlint/portlint/internal/search"
	"github.com/portlint/portlint/internal/types"
)

// debounceDelay coalesces editor save bursts into a single re-run.
const debounceDelay = 100 * time.Millisecond

// Watch runs one verification pass, then re-runs whenever files under the
// reference root or a candidate root change. It blocks until ctx is canceled
// and reports each completed run through onRun.
func (r *Runner) Watch(ctx context.Context, onRun func(types.Outcome)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	roots := append([]string{r.cfg.Reference.Root}, candidateRoots(r.cfg.Candidates)...)
	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			r.logger.Warn("skipping missing watch root", zap.String("root", root))
			continue
		}
		if err := watchTree(watcher, root); err != nil {
			return err
		}
	}

	run := func() {
		outcome, err := r.Run(ctx)
		if err != nil {
			r.logger.Error("verification run failed", zap.Error(err))
			return
		}
		if onRun != nil {
			onRun(outcome)
		}
	}
	run()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !r.relevantEvent(event) {
				continue
			}
			// wait for the change burst to settle before rerunning
			time.Sleep(debounceDelay)
			drainEvents(watcher)
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watch error", zap.Error(err))
		}
	}
}

// relevantEvent filters out chmod-only noise and this runner's own artifact
// writes, so a run never retriggers itself.
func (r *Runner) relevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	return base != filepath.Base(r.cfg.Artifacts.Functions) &&
		base != filepath.Base(r.cfg.Artifacts.Classes)
}

func drainEvents(watcher *fsnotify.Watcher) {
	for {
		select {
		case <-watcher.Events:
		default:
			return
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

func candidateRoots(targets []search.Target) []string {
	roots := make([]string, 0, len(targets))
	for _, t := range targets {
		roots = append(roots, t.Root)
	}
	return roots
}
