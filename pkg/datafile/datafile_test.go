package datafile

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPathDownloadsOnceAndCaches(t *testing.T) {
	remote := t.TempDir()
	if err := os.WriteFile(filepath.Join(remote, "1_20_items.json"), []byte(`{"items":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	home := t.TempDir()
	p := New(home, remote, "1_20", testLogger())

	path, err := p.Path(context.Background(), "items.json")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := filepath.Join(home, "data", "1_20_items.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cached file: %v", err)
	}
	if string(data) != `{"items":[]}` {
		t.Errorf("content = %q", data)
	}

	// Once cached, the remote copy is no longer consulted.
	if err := os.Remove(filepath.Join(remote, "1_20_items.json")); err != nil {
		t.Fatal(err)
	}
	again, err := p.Path(context.Background(), "items.json")
	if err != nil || again != path {
		t.Fatalf("cached Path = %q, %v", again, err)
	}
}

func TestPathConcurrent(t *testing.T) {
	remote := t.TempDir()
	if err := os.WriteFile(filepath.Join(remote, "v_blocks.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := New(t.TempDir(), remote, "v", testLogger())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Path(context.Background(), "blocks.json"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestPathErrors(t *testing.T) {
	p := New(t.TempDir(), t.TempDir(), "v", testLogger())
	for _, name := range []string{"", "..", "a/b"} {
		if _, err := p.Path(context.Background(), name); err == nil {
			t.Errorf("Path(%q) succeeded", name)
		}
	}
	if _, err := p.Path(context.Background(), "missing.json"); err == nil {
		t.Error("Path of a missing remote file succeeded")
	}

	offline := New(t.TempDir(), "", "v", testLogger())
	if _, err := offline.Path(context.Background(), "x.json"); err == nil {
		t.Error("Path without base URL succeeded")
	}
}
