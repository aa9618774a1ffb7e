package localfs

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"
)

func TestSaveJSONRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := store.SaveJSON(ctx, "doc-1.json", map[string]any{"document_id": "doc-1"}); err != nil {
		t.Fatalf("SaveJSON() error = %v", err)
	}

	rc, err := store.Open(ctx, "doc-1.json")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	var got map[string]any
	if err := json.NewDecoder(rc).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["document_id"] != "doc-1" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestSaveOverwritesWithoutLeavingTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		if err := store.Save(ctx, "out.txt", strings.NewReader(body)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	rc, err := store.Open(ctx, "out.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "second" {
		t.Fatalf("expected overwritten content, got %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected a single file, got %d", len(entries))
	}
}

func TestSaveRejectsPathKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Save(context.Background(), "../escape.json", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for path-like key")
	}
}
