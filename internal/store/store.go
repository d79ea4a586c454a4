package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	uploadsDirName  = "uploads"
	catalogFileName = "catalog.sqlite"

	// DefaultMaxUploadBytes caps a single uploaded export.
	DefaultMaxUploadBytes int64 = 20 << 20
)

var (
	// ErrNotFound is returned for names that do not identify a stored upload.
	ErrNotFound = errors.New("file not found")
	// ErrTooLarge is returned by Save when the upload exceeds the size limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// ParseError reports a stored upload that is not a readable export document.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Store keeps uploaded board exports under Dir/uploads, with a SQLite catalog
// alongside. The directory is the source of truth; the catalog only caches
// per-file details and can be rebuilt with Reindex.
type Store struct {
	Dir string
	Log log.FieldLogger
}

// FileInfo describes one stored upload.
type FileInfo struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	UploadedAt  time.Time `json:"uploadedAt"`
	Size        int64     `json:"size"`
	BoardName   string    `json:"boardName,omitempty"`
	SHA256      string    `json:"sha256,omitempty"`
}

// now is replaced in tests.
var now = time.Now

func (s Store) Ensure() error {
	return os.MkdirAll(s.uploadsDir(), 0o755)
}

func (s Store) uploadsDir() string {
	return filepath.Join(s.Dir, uploadsDirName)
}

func (s Store) catalogPath() string {
	return filepath.Join(s.Dir, catalogFileName)
}

func (s Store) logger() log.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return log.StandardLogger()
}

// Save stores r under a new name "<unix-ms>-<base name>" and records it in the
// catalog. maxBytes <= 0 uses DefaultMaxUploadBytes.
func (s Store) Save(ctx context.Context, originalName string, r io.Reader, maxBytes int64) (FileInfo, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if err := s.Ensure(); err != nil {
		return FileInfo{}, err
	}
	dir := s.uploadsDir()

	f, err := os.CreateTemp(dir, ".upload.*.tmp")
	if err != nil {
		return FileInfo{}, err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), io.LimitReader(r, maxBytes+1))
	if err != nil {
		_ = f.Close()
		return FileInfo{}, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return FileInfo{}, err
	}
	if n > maxBytes {
		return FileInfo{}, ErrTooLarge
	}

	base := sanitizeBaseName(originalName)
	ms := now().UnixMilli()
	var name string
	for {
		name = strconv.FormatInt(ms, 10) + "-" + base
		if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, os.ErrNotExist) {
			break
		}
		ms++
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		return FileInfo{}, err
	}

	info := FileInfo{
		Name:        name,
		DisplayName: base,
		UploadedAt:  time.UnixMilli(ms).UTC(),
		Size:        n,
		SHA256:      hex.EncodeToString(h.Sum(nil)),
		BoardName:   boardNameOf(filepath.Join(dir, name)),
	}
	if err := s.upsertCatalog(ctx, info); err != nil {
		// The upload itself is stored; List falls back to the directory.
		s.logger().WithError(err).WithField("file", name).Warn("catalog update failed")
	}
	s.logger().WithFields(log.Fields{"file": name, "size": n}).Info("upload stored")
	return info, nil
}

func sanitizeBaseName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	base := strings.TrimSpace(filepath.Base(name))
	if base == "" || base == "." || base == "/" || base == ".." {
		return "board.json"
	}
	return base
}

// List returns stored .json and .txt uploads, newest first.
func (s Store) List(ctx context.Context) ([]FileInfo, error) {
	ents, err := os.ReadDir(s.uploadsDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, err
	}

	known, err := s.catalogEntries(ctx)
	if err != nil {
		s.logger().WithError(err).Warn("catalog unavailable; listing from disk")
		known = map[string]FileInfo{}
	}

	out := make([]FileInfo, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() || !isListable(e.Name()) {
			continue
		}
		if c, ok := known[e.Name()]; ok {
			out = append(out, c)
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, diskInfo(e.Name(), fi))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].UploadedAt.After(out[j].UploadedAt)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}

func isListable(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".txt":
		return true
	}
	return false
}

// diskInfo derives what it can from a file name and stat result.
func diskInfo(name string, fi os.FileInfo) FileInfo {
	info := FileInfo{Name: name, DisplayName: name, Size: fi.Size(), UploadedAt: fi.ModTime().UTC()}
	if ts, rest, ok := splitUploadName(name); ok {
		info.UploadedAt = ts
		info.DisplayName = rest
	}
	return info
}

// splitUploadName splits "<unix-ms>-<rest>".
func splitUploadName(name string) (time.Time, string, bool) {
	prefix, rest, ok := strings.Cut(name, "-")
	if !ok || prefix == "" || rest == "" {
		return time.Time{}, "", false
	}
	ms, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, "", false
	}
	return time.UnixMilli(ms).UTC(), rest, true
}

// Open returns the raw upload. Names that are not a plain file name are
// treated as missing.
func (s Store) Open(name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.uploadsDir(), name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if st, err := f.Stat(); err != nil || st.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	return true
}

// boardNameOf peeks at the export's top-level name. Failures yield "".
func boardNameOf(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	var head struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(f).Decode(&head); err != nil {
		return ""
	}
	return strings.TrimSpace(head.Name)
}
