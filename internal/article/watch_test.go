package article

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/verte-zerg/tuiread/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "essay.md")
	if err := os.WriteFile(path, []byte("# Essay\n\nOne.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reloads := make(chan model.Article, 16)
	done, err := Watch(ctx, path, func(art model.Article, err error) {
		if err == nil {
			select {
			case reloads <- art:
			default:
			}
		}
	})
	if err != nil {
		cancel()
		t.Fatalf("watch: %v", err)
	}
	defer func() {
		cancel()
		<-done
	}()

	if err := os.WriteFile(path, []byte("# Essay\n\nOne.\n\nTwo.\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case art := <-reloads:
			if len(art.Paragraphs) == 2 {
				if art.ID != SubjectID(path) {
					t.Fatalf("expected stable id, got %s", art.ID)
				}
				return
			}
		case <-deadline:
			t.Fatalf("no reload observed")
		}
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "essay.md")
	if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done, err := Watch(ctx, path, func(model.Article, error) {})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "essay.md"), func(model.Article, error) {})
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
