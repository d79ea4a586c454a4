package store

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return Store{Dir: t.TempDir(), Log: logger}
}

func fixClock(t *testing.T, start time.Time) {
	t.Helper()
	cur := start
	prev := now
	now = func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
	t.Cleanup(func() { now = prev })
}

func TestSave_NamesAndCatalogs(t *testing.T) {
	s := newTestStore(t)
	fixClock(t, time.UnixMilli(1700000000000))
	ctx := context.Background()

	info, err := s.Save(ctx, "../../etc/My Board.json", strings.NewReader(`{"name":"Roadmap","lists":[],"cards":[]}`), 0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if info.Name != "1700000001000-My Board.json" {
		t.Fatalf("unexpected stored name %q", info.Name)
	}
	if info.DisplayName != "My Board.json" || info.BoardName != "Roadmap" || info.SHA256 == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "uploads", info.Name)); err != nil {
		t.Fatalf("expected upload on disk: %v", err)
	}

	files, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].BoardName != "Roadmap" {
		t.Fatalf("expected cataloged entry, got %+v", files)
	}
}

func TestSave_RejectsOversizedUpload(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Save(context.Background(), "big.json", strings.NewReader(strings.Repeat("x", 11)), 10)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	ents, _ := os.ReadDir(filepath.Join(s.Dir, "uploads"))
	if len(ents) != 0 {
		t.Fatalf("expected no leftover files, got %d", len(ents))
	}
}

func TestList_FiltersAndSortsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ensure(); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(s.Dir, "uploads")
	for _, name := range []string{"1000-old.json", "3000-new.txt", "2000-mid.json", "notes.md", "image.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{"3000-new.txt", "2000-mid.json", "1000-old.json"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("List = %v; want %v", names, want)
	}
	if files[0].DisplayName != "new.txt" || !files[0].UploadedAt.Equal(time.UnixMilli(3000)) {
		t.Fatalf("unexpected first entry %+v", files[0])
	}
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	s := newTestStore(t)
	files, err := s.List(context.Background())
	if err != nil || len(files) != 0 {
		t.Fatalf("expected empty listing, got %v %v", files, err)
	}
}

func TestOpen_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir, "secret.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../secret.json", "..", "", `a\b.json`, "missing.json"} {
		if _, err := s.Open(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Open(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestFetchExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	good, err := s.Save(ctx, "ok.json", strings.NewReader(`{"name":"B","lists":[],"cards":[]}`), 0)
	if err != nil {
		t.Fatal(err)
	}
	bad, err := s.Save(ctx, "bad.json", strings.NewReader(`{"name":`), 0)
	if err != nil {
		t.Fatal(err)
	}

	doc, err := s.FetchExport(ctx, good.Name)
	if err != nil || doc.Name != "B" {
		t.Fatalf("FetchExport(good) = %+v, %v", doc, err)
	}
	_, err = s.FetchExport(ctx, bad.Name)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Name != bad.Name {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if _, err := s.FetchExport(ctx, "nope.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rc, err := s.Open(good.Name)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	if b, _ := io.ReadAll(rc); !strings.Contains(string(b), `"B"`) {
		t.Fatalf("unexpected content %q", b)
	}
}

func TestReindex_RebuildsFromDisk(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ensure(); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(s.Dir, "uploads")
	if err := os.WriteFile(filepath.Join(dir, "5000-copied.json"), []byte(`{"name":"Copied"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "skip.bin"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, err := s.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 indexed file, got %d", n)
	}
	entries, err := s.catalogEntries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got, ok := entries["5000-copied.json"]
	if !ok || got.BoardName != "Copied" || got.DisplayName != "copied.json" || len(got.SHA256) != 64 {
		t.Fatalf("unexpected catalog entry %+v", got)
	}
}
