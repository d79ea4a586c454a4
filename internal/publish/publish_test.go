package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boardview/internal/board"
)

const sampleExport = `{
  "id": "b1",
  "name": "Roadmap",
  "desc": "Q3 plan",
  "labels": [{"id": "lbl", "name": "ready", "color": "green"}],
  "members": [{"id": "m1", "fullName": "Jo Doe", "initials": "JD"}],
  "checklists": [
    {"id": "cl1", "name": "Steps", "idCard": "card1", "checkItems": [
      {"id": "i1", "name": "second", "pos": 2, "state": "incomplete"},
      {"id": "i2", "name": "first", "pos": 1, "state": "complete"}
    ]}
  ],
  "lists": [
    {"id": "A", "name": "Todo", "pos": 1},
    {"id": "B", "name": "Empty", "pos": 2},
    {"id": "Z", "name": "Old", "pos": 3, "closed": true}
  ],
  "cards": [
    {"id": "card1", "name": "write [docs]", "idList": "A", "pos": 1, "idLabels": ["lbl"], "idMembers": ["m1"], "idChecklists": ["cl1"], "desc": "Some **markdown**.", "badges": {"checkItems": 2, "checkItemsChecked": 1}},
    {"id": "cardX", "name": "gone", "idList": "A", "pos": 2, "closed": true},
    {"id": "cardZ", "name": "old card", "idList": "Z", "pos": 1}
  ]
}`

func loadSample(t *testing.T) *board.State {
	t.Helper()
	st, err := board.Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return st
}

func TestRenderBoardMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderBoardMarkdown(loadSample(t), RenderOptions{})
	for _, want := range []string{
		"# Roadmap\n",
		"Q3 plan",
		"## Todo\n",
		`- [write \[docs\]](cards/card1.md) ` + "`ready` ☑ 1/2",
		"## Empty\n\n_No cards._",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "Old") || strings.Contains(md, "gone") {
		t.Fatalf("archived entities rendered without IncludeArchived:\n%s", md)
	}

	md = RenderBoardMarkdown(loadSample(t), RenderOptions{IncludeArchived: true})
	if !strings.Contains(md, "## Old (archived)") || !strings.Contains(md, "[gone](cards/cardX.md) (archived)") {
		t.Fatalf("expected archived entities:\n%s", md)
	}
}

func TestRenderCardMarkdown(t *testing.T) {
	t.Parallel()

	st := loadSample(t)
	md, err := RenderCardMarkdown(st, "card1", RenderOptions{})
	if err != nil {
		t.Fatalf("RenderCardMarkdown: %v", err)
	}
	for _, want := range []string{"# write [docs]", "- List: Todo", "- Labels: ready", "- Members: Jo Doe", "## Description\n\nSome **markdown**.", "## Steps (1/2)", "- [x] first\n- [ ] second"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}

	if _, err := RenderCardMarkdown(st, "cardX", RenderOptions{}); err == nil {
		t.Fatalf("expected archived card to be refused")
	}
	if _, err := RenderCardMarkdown(st, "nope", RenderOptions{}); err == nil {
		t.Fatalf("expected missing card error")
	}
}

func TestWriteBoard(t *testing.T) {
	t.Parallel()

	st := loadSample(t)
	dir := t.TempDir()
	res, err := WriteBoard(st, dir, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteBoard: %v", err)
	}
	if len(res.Written) != 2 {
		t.Fatalf("expected index and one card page, got %v", res.Written)
	}
	if _, err := os.Stat(filepath.Join(dir, "cards", "card1.md")); err != nil {
		t.Fatalf("card page missing: %v", err)
	}

	if _, err := WriteBoard(st, dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite error, got %v", err)
	}
	res, err = WriteBoard(st, dir, WriteOptions{Overwrite: true, IncludeArchived: true})
	if err != nil {
		t.Fatalf("WriteBoard overwrite: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected archived pages too, got %v", res.Written)
	}

	if _, err := WriteBoard(st, " ", WriteOptions{}); err == nil {
		t.Fatalf("expected missing dir error")
	}
}
