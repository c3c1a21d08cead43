package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// sqliteHeader opens every SQLite 3 database file.
var sqliteHeader = []byte("SQLite format 3\x00")

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// RestoreOptions controls RestoreBackup. With Force set and a database
// already at the target, a copy of it is saved to SafetyDir first.
type RestoreOptions struct {
	Force     bool
	SafetyDir string
	Now       time.Time
}

type RestoreResult struct {
	Restored BackupInfo  `json:"restored"`
	Previous *BackupInfo `json:"previous,omitempty"`
}

// BackupFileName is the default file name for a backup taken at now.
func BackupFileName(now time.Time) string {
	return "checkin-" + now.UTC().Format("20060102-150405") + ".db"
}

func safetyFileName(now time.Time) string {
	return "checkin-pre-restore-" + now.UTC().Format("20060102-150405") + ".db"
}

// CreateBackup copies the database at dbPath to outPath and writes a
// sidecar outPath.sha256 checksum.
func CreateBackup(dbPath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(dbPath) == "" {
		return BackupInfo{}, fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if filepath.Clean(dbPath) == filepath.Clean(outPath) {
		return BackupInfo{}, fmt.Errorf("backup output path must differ from the database path")
	}
	if err := checkSQLiteFile(dbPath); err != nil {
		return BackupInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(dbPath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	return statBackup(outPath, checksum)
}

// RestoreBackup replaces the database at dbPath with backupPath after
// checking that the file is SQLite and matches its checksum sidecar.
func RestoreBackup(backupPath, dbPath string, opts RestoreOptions) (RestoreResult, error) {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return RestoreResult{}, fmt.Errorf("backup path and db path are required")
	}
	if err := checkSQLiteFile(backupPath); err != nil {
		return RestoreResult{}, err
	}
	checksum, err := fileSHA256(backupPath)
	if err != nil {
		return RestoreResult{}, err
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		if strings.TrimSpace(string(expected)) != checksum {
			return RestoreResult{}, fmt.Errorf("backup checksum mismatch for %s", backupPath)
		}
	}

	var result RestoreResult
	_, statErr := os.Stat(dbPath)
	switch {
	case statErr == nil && !opts.Force:
		return RestoreResult{}, fmt.Errorf("target db already exists; use --force to overwrite")
	case statErr == nil && opts.SafetyDir != "":
		prev, err := CreateBackup(dbPath, filepath.Join(opts.SafetyDir, safetyFileName(nowOr(opts.Now))))
		if err != nil {
			return RestoreResult{}, fmt.Errorf("save current db before restore: %w", err)
		}
		result.Previous = &prev
	case statErr != nil && !errors.Is(statErr, os.ErrNotExist):
		return RestoreResult{}, fmt.Errorf("stat target db: %w", statErr)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return RestoreResult{}, fmt.Errorf("create db directory: %w", err)
	}
	if err := copyFile(backupPath, dbPath); err != nil {
		return RestoreResult{}, err
	}
	result.Restored, err = statBackup(backupPath, checksum)
	if err != nil {
		return RestoreResult{}, err
	}
	return result, nil
}

// ListBackups returns the .db files in dir, newest first. A missing dir
// has no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return []BackupInfo{}, nil
	case err != nil:
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".db") {
			continue
		}
		full := filepath.Join(dir, f.Name())
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		info, err := statBackup(full, checksum)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func statBackup(path, checksum string) (BackupInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: path, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

func checkSQLiteFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	head := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, sqliteHeader) {
		return fmt.Errorf("%s is not a sqlite database", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
