package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

func (s Store) openCatalog(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.catalogPath())
	if err != nil {
		return nil, err
	}
	// WAL lets the CLI list uploads while a server is writing.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateCatalog(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateCatalog(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalog_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS uploads (
			name TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			board_name TEXT NOT NULL,
			size INTEGER NOT NULL,
			sha256 TEXT NOT NULL,
			uploaded_at_unixms INTEGER NOT NULL,
			indexed_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_uploaded_at ON uploads(uploaded_at_unixms);`,
		`INSERT OR IGNORE INTO catalog_meta(k, v) VALUES('schema_version', '1');`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s Store) upsertCatalog(ctx context.Context, info FileInfo) error {
	db, err := s.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return upsertUpload(ctx, db, info)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertUpload(ctx context.Context, db execer, info FileInfo) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO uploads(
			name, display_name, board_name, size, sha256, uploaded_at_unixms, indexed_at_unixms
		) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		info.Name, info.DisplayName, info.BoardName, info.Size, info.SHA256,
		info.UploadedAt.UnixMilli(), now().UTC().UnixMilli(),
	)
	return err
}

// catalogEntries returns every cataloged upload keyed by stored name.
func (s Store) catalogEntries(ctx context.Context) (map[string]FileInfo, error) {
	db, err := s.openCatalog(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name, display_name, board_name, size, sha256, uploaded_at_unixms FROM uploads`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]FileInfo{}
	for rows.Next() {
		var (
			info FileInfo
			ms   int64
		)
		if err := rows.Scan(&info.Name, &info.DisplayName, &info.BoardName, &info.Size, &info.SHA256, &ms); err != nil {
			return nil, err
		}
		info.UploadedAt = time.UnixMilli(ms).UTC()
		out[info.Name] = info
	}
	return out, rows.Err()
}

// Reindex rebuilds the catalog from the uploads directory and returns the
// number of files indexed.
func (s Store) Reindex(ctx context.Context) (int, error) {
	if err := s.Ensure(); err != nil {
		return 0, err
	}
	ents, err := os.ReadDir(s.uploadsDir())
	if err != nil {
		return 0, err
	}

	db, err := s.openCatalog(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM uploads`); err != nil {
		return 0, err
	}
	n := 0
	for _, e := range ents {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if e.IsDir() || !isListable(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(s.uploadsDir(), e.Name())
		info := diskInfo(e.Name(), fi)
		if info.SHA256, err = hashFile(path); err != nil {
			return 0, err
		}
		info.BoardName = boardNameOf(path)
		if err := upsertUpload(ctx, tx, info); err != nil {
			return 0, err
		}
		n++
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO catalog_meta(k, v) VALUES('reindexed_at', ?)`, now().UTC().Format(time.RFC3339)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	s.logger().WithField("files", n).Info("catalog rebuilt")
	return n, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return strings.ToLower(hex.EncodeToString(h.Sum(nil))), nil
}
