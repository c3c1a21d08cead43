package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saadjs/checkin-cli/internal/db"
	"github.com/saadjs/checkin-cli/internal/model"
	"github.com/saadjs/checkin-cli/internal/service"
)

func seedDBFile(t *testing.T, path string, amounts ...float64) {
	t.Helper()
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	for _, a := range amounts {
		if _, err := service.LogEvent(sqldb, service.LogEventInput{Kind: model.KindBeauty, BehaviorID: 4, Amount: a, Now: fixedNow}); err != nil {
			t.Fatalf("log event: %v", err)
		}
	}
}

func countEvents(t *testing.T, path string) int {
	t.Helper()
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer sqldb.Close()
	events, err := service.ListEvents(sqldb, service.EventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	return len(events)
}

func TestBackupCreateListRestore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "checkin.db")
	seedDBFile(t, dbPath, 10)

	backupDir := filepath.Join(dir, "backups")
	name := service.BackupFileName(fixedNow)
	if !strings.HasPrefix(name, "checkin-20260213-113000") {
		t.Fatalf("unexpected backup name %q", name)
	}
	info, err := service.CreateBackup(dbPath, filepath.Join(backupDir, name))
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info %+v", info)
	}
	if _, err := service.CreateBackup(dbPath, dbPath); err == nil {
		t.Fatalf("expected same-path backup to fail")
	}

	list, err := service.ListBackups(backupDir)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list %+v", list)
	}

	restored := filepath.Join(dir, "restored.db")
	res, err := service.RestoreBackup(info.Path, restored, service.RestoreOptions{})
	if err != nil {
		t.Fatalf("restore backup: %v", err)
	}
	if res.Previous != nil || res.Restored.Checksum != info.Checksum {
		t.Fatalf("unexpected restore result %+v", res)
	}
	if _, err := service.RestoreBackup(info.Path, restored, service.RestoreOptions{}); err == nil {
		t.Fatalf("expected restore without force to refuse overwrite")
	}
	if n := countEvents(t, restored); n != 1 {
		t.Fatalf("expected restored event, got %d", n)
	}

	if err := os.WriteFile(info.Path+".sha256", []byte("deadbeef\n"), 0o644); err != nil {
		t.Fatalf("tamper checksum: %v", err)
	}
	if _, err := service.RestoreBackup(info.Path, restored, service.RestoreOptions{Force: true}); err == nil {
		t.Fatalf("expected checksum mismatch")
	}
}

func TestRestoreForceKeepsSafetyCopy(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.db")
	seedDBFile(t, oldPath, 5)
	backup, err := service.CreateBackup(oldPath, filepath.Join(dir, "snap.db"))
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}

	live := filepath.Join(dir, "live.db")
	seedDBFile(t, live, 1, 2, 3)
	safety := filepath.Join(dir, "safety")
	res, err := service.RestoreBackup(backup.Path, live, service.RestoreOptions{Force: true, SafetyDir: safety, Now: fixedNow})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if res.Previous == nil || !strings.Contains(res.Previous.Path, "checkin-pre-restore-") {
		t.Fatalf("expected safety copy, got %+v", res)
	}
	if n := countEvents(t, live); n != 1 {
		t.Fatalf("expected live db to hold the backup's 1 event, got %d", n)
	}
	if n := countEvents(t, res.Previous.Path); n != 3 {
		t.Fatalf("expected safety copy to keep 3 events, got %d", n)
	}
}

func TestRestoreRejectsNonSQLiteFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bogus := filepath.Join(dir, "notes.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	_, err := service.RestoreBackup(bogus, filepath.Join(dir, "target.db"), service.RestoreOptions{})
	if err == nil || !strings.Contains(err.Error(), "not a sqlite database") {
		t.Fatalf("expected sqlite header error, got %v", err)
	}
}

func TestListBackupsMissingDir(t *testing.T) {
	t.Parallel()
	list, err := service.ListBackups(filepath.Join(t.TempDir(), "none"))
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no backups, got %+v", list)
	}
}
