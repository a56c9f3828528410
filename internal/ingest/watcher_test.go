package ingest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hwetherall/innovera-ama/internal/ingest"
	"github.com/hwetherall/innovera-ama/internal/store"
	"github.com/hwetherall/innovera-ama/internal/testsupport"
)

func TestWatcherIngestsDroppedFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := st.CreateSession(ctx, "August 2026", store.SessionWaitingTranscript)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	testsupport.NewQuestion(t, st, session.ID, "What did we launch?")

	path := filepath.Join(cfg.Paths.IngestDir, session.ID+".txt")
	if err := os.WriteFile(path, []byte("We launched the new dashboard."), 0o644); err != nil {
		t.Fatalf("write ingest file: %v", err)
	}

	ingestor := newIngestor(st, &fakeGateway{})
	watcher := ingest.NewWatcher(cfg.Paths.IngestDir, ingestor, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = watcher.Run(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		refreshed, err := st.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if refreshed.Status == store.SessionCompleted {
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Fatal("expected ingested file to be removed")
			}
			cancel()
			<-done
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("session was not completed by the watcher")
}
