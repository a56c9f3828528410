package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/hwetherall/innovera-ama/internal/logging"
)

// Watcher feeds transcript files dropped into the ingest directory through
// the ingestion pipeline. Files are named <session-id>.txt or <session-id>.vtt
// and are removed after a successful run; failed files stay behind for
// inspection.
type Watcher struct {
	dir      string
	ingestor *Ingestor
	logger   *slog.Logger
}

// NewWatcher builds a Watcher over dir.
func NewWatcher(dir string, ingestor *Ingestor, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{
		dir:      dir,
		ingestor: ingestor,
		logger:   logger.With(slog.String("component", "ingest-watcher")),
	}
}

// Run watches the directory until ctx is canceled. Files already present at
// startup are processed first.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(w.dir); err != nil {
		return err
	}

	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				w.process(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Error("scan ingest dir", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.process(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".txt" && ext != ".vtt" {
		return
	}
	sessionID := strings.TrimSuffix(name, filepath.Ext(name))
	if sessionID == "" {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Error("read transcript file",
				slog.String("file", name),
				logging.Error(err))
		}
		return
	}

	content, err := ExtractText(name, string(raw))
	if err != nil {
		w.logger.Error("extract transcript",
			slog.String("file", name),
			logging.Error(err))
		return
	}

	result, err := w.ingestor.CreateTranscriptAndAnswerSession(ctx, sessionID, content)
	if err != nil {
		w.logger.Error("ingest transcript",
			slog.String("file", name),
			slog.String("session_id", sessionID),
			logging.Error(err))
		return
	}

	if err := os.Remove(path); err != nil {
		w.logger.Warn("remove ingested file",
			slog.String("file", name),
			logging.Error(err))
	}
	w.logger.Info("ingested transcript file",
		slog.String("file", name),
		slog.String("session_id", sessionID),
		slog.Int("answers", len(result.Answers)))
}
