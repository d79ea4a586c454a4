package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boardview/internal/board"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
)

const sampleExport = `{
  "id": "b1",
  "name": "Roadmap",
  "lists": [
    {"id": "A", "name": "Todo", "pos": 1},
    {"id": "B", "name": "Doing", "pos": 2},
    {"id": "Z", "name": "Old", "pos": 3, "closed": true}
  ],
  "cards": [
    {"id": "card1", "name": "one", "idList": "A", "pos": 1},
    {"id": "card2", "name": "two", "idList": "A", "pos": 2},
    {"id": "cardX", "name": "gone", "idList": "A", "pos": 3, "closed": true},
    {"id": "cardZ", "name": "old card", "idList": "Z", "pos": 1}
  ]
}`

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustEnv(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: boardview %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, stderr, stdout)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s", err, stdout)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected data key in envelope: %v", env)
	}
	if hints, ok := env["_hints"]; ok && hints != nil {
		if _, ok := hints.([]any); !ok {
			t.Fatalf("expected _hints to be list; got %T", hints)
		}
	}
	return env
}

// setup isolates the config dir and returns a data dir plus an uploaded
// sample export name.
func setup(t *testing.T) (dir, name string) {
	t.Helper()
	t.Setenv("BOARDVIEW_CONFIG_DIR", t.TempDir())
	t.Setenv("BOARDVIEW_DIR", "")
	t.Setenv("BOARDVIEW_REDIS_URL", "")
	dir = t.TempDir()

	src := filepath.Join(t.TempDir(), "roadmap.json")
	if err := os.WriteFile(src, []byte(sampleExport), 0o644); err != nil {
		t.Fatal(err)
	}
	env := mustEnv(t, "--dir", dir, "--log-level", "error", "upload", src)
	data := env["data"].(map[string]any)
	name, _ = data["name"].(string)
	if !strings.HasSuffix(name, "-roadmap.json") {
		t.Fatalf("unexpected stored name %q", name)
	}
	if data["boardName"] != "Roadmap" {
		t.Fatalf("expected board name in upload result: %v", data)
	}
	return dir, name
}

func TestFiles_ListsUploads(t *testing.T) {
	dir, name := setup(t)

	env := mustEnv(t, "--dir", dir, "files")
	rows := env["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected one file, got %v", rows)
	}
	row := rows[0].(map[string]any)
	if row["name"] != name || row["displayName"] != "roadmap.json" {
		t.Fatalf("unexpected row %v", row)
	}
	if s, _ := row["sizeText"].(string); !strings.HasSuffix(s, "B") {
		t.Fatalf("expected humanized size, got %v", row["sizeText"])
	}
	if env["meta"].(map[string]any)["count"] != float64(1) {
		t.Fatalf("unexpected meta %v", env["meta"])
	}
}

func TestShow_ProjectsVisibleBoard(t *testing.T) {
	dir, name := setup(t)

	env := mustEnv(t, "--dir", dir, "show", name)
	data := env["data"].(map[string]any)
	lists := data["lists"].([]any)
	if len(lists) != 2 {
		t.Fatalf("expected archived list hidden, got %d lists", len(lists))
	}
	todo := lists[0].(map[string]any)
	if todo["name"] != "Todo" || len(todo["cards"].([]any)) != 2 {
		t.Fatalf("unexpected Todo list %v", todo)
	}
	if _, ok := env["meta"].(map[string]any)["archived"]; ok {
		t.Fatalf("archived entities must only appear with --closed")
	}
	hints := env["_hints"].([]any)
	if len(hints) != 2 || !strings.Contains(hints[1].(string), "--closed") {
		t.Fatalf("expected --closed hint, got %v", hints)
	}
}

func TestShow_ClosedIncludesArchived(t *testing.T) {
	dir, name := setup(t)

	env := mustEnv(t, "--dir", dir, "show", "--closed", name)
	arch := env["meta"].(map[string]any)["archived"].(map[string]any)
	lists := arch["lists"].([]any)
	if len(lists) != 1 || lists[0].(map[string]any)["id"] != "Z" {
		t.Fatalf("unexpected archived lists %v", lists)
	}
	var ids []string
	for _, c := range arch["cards"].([]any) {
		ids = append(ids, c.(map[string]any)["id"].(string))
	}
	if strings.Join(ids, ",") != "cardX" {
		t.Fatalf("unexpected archived cards %v", ids)
	}
}

func TestShow_Errors(t *testing.T) {
	dir, _ := setup(t)

	_, stderr, err := runCLI(t, []string{"--dir", dir, "show", "missing.json"})
	if err == nil || !strings.Contains(string(stderr), "file not found: missing.json") {
		t.Fatalf("expected not-found error, got %v / %s", err, stderr)
	}

	if err := os.WriteFile(filepath.Join(dir, "uploads", "1-broken.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, stderr, err = runCLI(t, []string{"--dir", dir, "show", "1-broken.json"})
	if err == nil || !strings.Contains(string(stderr), "is not a board export") {
		t.Fatalf("expected parse error, got %v / %s", err, stderr)
	}
}

func TestShow_EDN(t *testing.T) {
	dir, name := setup(t)

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "edn", "show", name})
	if err != nil {
		t.Fatal(err)
	}
	out := string(stdout)
	if !strings.HasPrefix(out, "{:_hints [") || !strings.Contains(out, ":id-list \"A\"") {
		t.Fatalf("unexpected edn output:\n%s", out)
	}
}

func TestOpen_RunsTUIWithEngine(t *testing.T) {
	dir, name := setup(t)

	var gotTitle string
	var gotLists int
	old := runTUI
	runTUI = func(eng *board.Engine, title string) error {
		gotTitle = title
		gotLists = len(eng.State().VisibleLists())
		return eng.MoveList("B", 0)
	}
	t.Cleanup(func() { runTUI = old })

	if _, stderr, err := runCLI(t, []string{"--dir", dir, "open", name}); err != nil {
		t.Fatalf("open: %v\n%s", err, stderr)
	}
	if gotTitle != "Roadmap" || gotLists != 2 {
		t.Fatalf("unexpected tui call title=%q lists=%d", gotTitle, gotLists)
	}

	// Moves are in-memory only: the stored export keeps its order.
	env := mustEnv(t, "--dir", dir, "show", name)
	first := env["data"].(map[string]any)["lists"].([]any)[0].(map[string]any)
	if first["id"] != "A" {
		t.Fatalf("stored export changed after TUI session: first list %v", first["id"])
	}
}

func TestReindex(t *testing.T) {
	dir, _ := setup(t)

	if err := os.WriteFile(filepath.Join(dir, "uploads", "5-extra.json"), []byte(`{"name":"Extra"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	env := mustEnv(t, "--dir", dir, "reindex")
	if env["data"].(map[string]any)["indexed"] != float64(2) {
		t.Fatalf("unexpected reindex result %v", env["data"])
	}
}

func TestConfig_SetShowPath(t *testing.T) {
	t.Setenv("BOARDVIEW_CONFIG_DIR", t.TempDir())
	t.Setenv("BOARDVIEW_DIR", "")
	t.Setenv("BOARDVIEW_ADDR", "")

	path := mustEnv(t, "config", "path")["data"].(map[string]any)
	if path["exists"] != false {
		t.Fatalf("expected no config file yet: %v", path)
	}

	mustEnv(t, "config", "set", "addr", "127.0.0.1:4000")
	mustEnv(t, "config", "set", "metaCacheTtl", "2h")

	if _, _, err := runCLI(t, []string{"config", "set", "metaCacheTtl", "soon"}); err == nil {
		t.Fatalf("expected invalid duration to be rejected")
	}
	if _, _, err := runCLI(t, []string{"config", "set", "colour", "red"}); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}

	env := mustEnv(t, "config", "show")
	eff := env["data"].(map[string]any)["effective"].(map[string]any)
	if eff["addr"] != "127.0.0.1:4000" {
		t.Fatalf("unexpected effective addr %v", eff["addr"])
	}
	if eff["metaCacheTtl"] != float64(2*time.Hour) {
		t.Fatalf("unexpected ttl %v", eff["metaCacheTtl"])
	}

	t.Setenv("BOARDVIEW_ADDR", "127.0.0.1:5000")
	eff = mustEnv(t, "config", "show")["data"].(map[string]any)["effective"].(map[string]any)
	if eff["addr"] != "127.0.0.1:5000" {
		t.Fatalf("expected env to win over config file, got %v", eff["addr"])
	}
	if mustEnv(t, "config", "path")["data"].(map[string]any)["exists"] != true {
		t.Fatalf("expected config file after set")
	}
}

func TestMeta_CachesInRedis(t *testing.T) {
	t.Setenv("BOARDVIEW_CONFIG_DIR", t.TempDir())
	mr := miniredis.RunT(t)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Fallback</title><meta property="og:title" content="Release notes"></head></html>`))
	}))
	target := page.URL + "/notes"
	redisURL := "redis://" + mr.Addr() + "/0"

	env := mustEnv(t, "meta", "--redis-url", redisURL, target)
	if env["data"].(map[string]any)["title"] != "Release notes" {
		t.Fatalf("unexpected metadata %v", env["data"])
	}
	if env["meta"].(map[string]any)["cached"] != true {
		t.Fatalf("expected cached=true with a redis url")
	}

	page.Close()
	env = mustEnv(t, "meta", "--redis-url", redisURL, target)
	if env["data"].(map[string]any)["title"] != "Release notes" {
		t.Fatalf("expected second lookup to be served from redis, got %v", env["data"])
	}
}

func TestMeta_RejectsNonHTTP(t *testing.T) {
	t.Setenv("BOARDVIEW_CONFIG_DIR", t.TempDir())
	t.Setenv("BOARDVIEW_REDIS_URL", "")
	if _, _, err := runCLI(t, []string{"meta", "file:///etc/passwd"}); err == nil {
		t.Fatalf("expected unsupported scheme error")
	}
}

func TestRoot_RejectsBadFlags(t *testing.T) {
	t.Setenv("BOARDVIEW_CONFIG_DIR", t.TempDir())
	if _, stderr, err := runCLI(t, []string{"--format", "yaml", "files"}); err == nil || !strings.Contains(string(stderr), "unknown format") {
		t.Fatalf("expected format error, got %v / %s", err, stderr)
	}
	if _, _, err := runCLI(t, []string{"--log-level", "loud", "files"}); err == nil {
		t.Fatalf("expected log level error")
	}
	if _, _, err := runCLI(t, []string{"--log-format", "xml", "files"}); err == nil {
		t.Fatalf("expected log format error")
	}
}

func TestServe_ServesUntilCancelled(t *testing.T) {
	dir, name := setup(t)
	logger, _ := test.NewNullLogger()
	app := &App{Dir: dir, Format: "json", log: logger}

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	urls := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- runServe(ctx, cmd, app, serveOptions{addr: "127.0.0.1:0"}, func(u string) { urls <- u })
	}()

	var base string
	select {
	case base = <-urls:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("serve did not start")
	}

	resp, err := http.Get(base + "health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "api/files/" + name)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("api file: %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("serve did not stop")
	}

	var env map[string]any
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("startup envelope: %v\n%s", err, out.String())
	}
	if !strings.HasPrefix(env["data"].(map[string]any)["url"].(string), "http://127.0.0.1:") {
		t.Fatalf("unexpected startup data %v", env["data"])
	}
}

func TestPublish_WritesMarkdown(t *testing.T) {
	dir, name := setup(t)
	out := t.TempDir()

	env := mustEnv(t, "--dir", dir, "publish", name, "--to", out)
	written := env["data"].(map[string]any)["written"].([]any)
	if len(written) != 3 {
		t.Fatalf("expected index and two card pages, got %v", written)
	}
	b, err := os.ReadFile(filepath.Join(out, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "- [one](cards/card1.md)") {
		t.Fatalf("unexpected index:\n%s", b)
	}

	if _, _, err := runCLI(t, []string{"--dir", dir, "publish", name, "--to", out}); err == nil {
		t.Fatalf("expected existing files to be protected")
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "publish", name}); err == nil {
		t.Fatalf("expected missing --to error")
	}
}

func TestDocs(t *testing.T) {
	t.Setenv("BOARDVIEW_CONFIG_DIR", t.TempDir())

	topics := mustEnv(t, "docs")["data"].(map[string]any)["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics")
	}
	stdout, _, err := runCLI(t, []string{"docs", "keys", "--raw"})
	if err != nil || !strings.HasPrefix(string(stdout), "# Terminal keys") {
		t.Fatalf("unexpected raw docs %v:\n%s", err, stdout)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic error")
	}
}
