package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docmeta/internal/core/domain"
	"github.com/kirillkom/docmeta/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/docmeta/internal/infrastructure/storage/localfs"
)

type processorFake struct {
	mu    sync.Mutex
	pdfs  []string
	texts map[string]string
}

func (f *processorFake) ProcessDocument(_ context.Context, filename, text string) domain.DocumentResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.texts == nil {
		f.texts = map[string]string{}
	}
	f.texts[filename] = text
	if text == "" {
		return domain.DocumentResult{
			ID:             "id-" + filename,
			Filename:       filename,
			Classification: domain.Classification{Type: domain.UnknownType},
			Metadata:       domain.Metadata{},
			Status:         domain.StatusFailed,
			Error:          "could not extract any text",
		}
	}
	return domain.DocumentResult{ID: "id-" + filename, Filename: filename, Metadata: domain.Metadata{}, Status: domain.StatusSuccess}
}

func (f *processorFake) ProcessPDF(_ context.Context, filename string, _ []byte) domain.DocumentResult {
	f.mu.Lock()
	f.pdfs = append(f.pdfs, filename)
	f.mu.Unlock()
	return domain.DocumentResult{ID: "id-" + filename, Filename: filename, Metadata: domain.Metadata{}, Status: domain.StatusSuccess}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newRunner(t *testing.T) (*Runner, *processorFake, string) {
	t.Helper()
	outDir := t.TempDir()
	store, err := localfs.New(outDir)
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	processor := &processorFake{}
	return NewRunner(processor, plaintext.NewExtractor(), store, nil), processor, outDir
}

func TestProcessFileWritesResultJSON(t *testing.T) {
	runner, processor, outDir := newRunner(t)
	path := writeFile(t, t.TempDir(), "notes.txt", "Meeting notes from Monday")

	result, err := runner.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if processor.texts["notes.txt"] != "Meeting notes from Monday" {
		t.Fatalf("plain text not forwarded: %v", processor.texts)
	}

	raw, err := os.ReadFile(filepath.Join(outDir, result.ID+".json"))
	if err != nil {
		t.Fatalf("read result file: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got["document_id"] != "id-notes.txt" || got["processing_status"] != "success" {
		t.Fatalf("unexpected result file %s", raw)
	}
}

func TestProcessFileRecordsUnreadableTextAsFailure(t *testing.T) {
	runner, _, _ := newRunner(t)
	path := writeFile(t, t.TempDir(), "blank.txt", "   ")

	result, err := runner.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if result.Status != domain.StatusFailed {
		t.Fatalf("expected failed result, got %+v", result)
	}
}

func TestProcessDirWritesSummary(t *testing.T) {
	runner, processor, outDir := newRunner(t)
	inDir := t.TempDir()
	writeFile(t, inDir, "b.pdf", "%PDF")
	writeFile(t, inDir, "a.txt", "Quarterly report")
	writeFile(t, inDir, "skip.png", "binary")
	if err := os.Mkdir(filepath.Join(inDir, "nested.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	results, err := runner.ProcessDir(context.Background(), inDir, 2)
	if err != nil {
		t.Fatalf("ProcessDir() error = %v", err)
	}
	if len(results) != 2 || results[0].Filename != "a.txt" || results[1].Filename != "b.pdf" {
		t.Fatalf("unexpected results %+v", results)
	}
	if len(processor.pdfs) != 1 || processor.pdfs[0] != "b.pdf" {
		t.Fatalf("expected one pdf, got %v", processor.pdfs)
	}

	succeeded, failed := Counts(results)
	if succeeded != 2 || failed != 0 {
		t.Fatalf("unexpected counts %d/%d", succeeded, failed)
	}

	raw, err := os.ReadFile(filepath.Join(outDir, SummaryFile))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Documents")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
}

func TestListDocumentsMissingDir(t *testing.T) {
	if _, err := ListDocuments(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
