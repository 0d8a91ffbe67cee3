package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

func newTestBackupService(t *testing.T) (*BackupService, string, string) {
	t.Helper()

	appDir := t.TempDir()
	backupDir := filepath.Join(t.TempDir(), "backups")
	dbPath := filepath.Join(appDir, "bjj_crm.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("sqlite payload"), 0o644))

	svc := NewBackupService(appDir, backupDir, dbPath, "1.0.0-test", zap.NewNop())
	return svc, backupDir, dbPath
}

func TestCreateBackupDatabaseOnly(t *testing.T) {
	svc, backupDir, dbPath := newTestBackupService(t)

	rec, err := svc.CreateBackup(false)
	require.NoError(t, err)

	assert.Equal(t, model.BackupTypeManual, rec.BackupType)
	assert.False(t, rec.IncludeFiles)
	assert.Empty(t, rec.FilesFile)
	assert.Equal(t, "1.0.0-test", rec.AppVersion)

	assert.Equal(t, filepath.Join(backupDir, "bjj_crm_"+rec.Timestamp+".db"), rec.DBFile)
	assert.Equal(t, filepath.Join(backupDir, "backup_metadata_"+rec.Timestamp+".json"), rec.MetadataFile)

	copied, err := os.ReadFile(rec.DBFile)
	require.NoError(t, err)
	original, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	// Контрольная сумма в метаданных совпадает с фактическим содержимым
	sum := sha256.Sum256(copied)
	assert.Equal(t, hex.EncodeToString(sum[:]), rec.Checksums["database"])
	assert.Equal(t, int64(len(copied)), rec.FileSizes["database"])

	data, err := os.ReadFile(rec.MetadataFile)
	require.NoError(t, err)
	var onDisk model.BackupRecord
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, rec.Timestamp, onDisk.Timestamp)
}

func TestCreateBackupWithFiles(t *testing.T) {
	svc, _, _ := newTestBackupService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.appDir, "go.mod"), []byte("module test\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(svc.appDir, "migrations"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(svc.appDir, "migrations", "00001_init.sql"), []byte("-- up\n"), 0o644))

	rec, err := svc.CreateBackup(true)
	require.NoError(t, err)

	assert.True(t, rec.IncludeFiles)
	require.NotEmpty(t, rec.FilesFile)
	assert.FileExists(t, rec.FilesFile)
	assert.NotEmpty(t, rec.Checksums["files"])
	assert.Greater(t, rec.FileSizes["files"], int64(0))
}

func TestListBackupsSortedNewestFirst(t *testing.T) {
	svc, backupDir, _ := newTestBackupService(t)
	require.NoError(t, os.MkdirAll(backupDir, 0o755))

	for _, ts := range []string{"20240101_120000", "20240301_120000", "20240201_120000"} {
		writeBackupTriad(t, backupDir, ts, time.Now())
	}
	// Битые метаданные молча пропускаются
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "backup_metadata_broken.json"), []byte("{"), 0o644))

	records, err := svc.ListBackups()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "20240301_120000", records[0].Timestamp)
	assert.Equal(t, "20240201_120000", records[1].Timestamp)
	assert.Equal(t, "20240101_120000", records[2].Timestamp)
}

func TestListBackupsMissingDir(t *testing.T) {
	svc, _, _ := newTestBackupService(t)

	records, err := svc.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRestoreBackup(t *testing.T) {
	svc, _, dbPath := newTestBackupService(t)

	rec, err := svc.CreateBackup(false)
	require.NoError(t, err)

	// База меняется после снятия копии
	require.NoError(t, os.WriteFile(dbPath, []byte("modified payload"), 0o644))

	require.NoError(t, svc.RestoreBackup(rec, false))

	restored, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, "sqlite payload", string(restored))

	// Прежняя база сохранена рядом до перезаписи
	matches, err := filepath.Glob(dbPath + ".backup_*")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	safety, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "modified payload", string(safety))
}

func TestDeleteBackup(t *testing.T) {
	svc, _, _ := newTestBackupService(t)

	rec, err := svc.CreateBackup(false)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBackup(rec))
	assert.NoFileExists(t, rec.DBFile)
	assert.NoFileExists(t, rec.MetadataFile)

	// Повторное удаление не считается ошибкой
	require.NoError(t, svc.DeleteBackup(rec))
}

func TestCleanupOldBackups(t *testing.T) {
	svc, backupDir, _ := newTestBackupService(t)
	require.NoError(t, os.MkdirAll(backupDir, 0o755))

	old := time.Now().AddDate(0, 0, -30)
	oldTS := old.Format(backupTimestampLayout)
	freshTS := time.Now().Format(backupTimestampLayout)

	writeBackupTriad(t, backupDir, oldTS, old)
	writeBackupTriad(t, backupDir, freshTS, time.Now())

	// Осиротевший старый файл без метаданных
	orphan := filepath.Join(backupDir, "bjj_crm_20200101_000000.db")
	require.NoError(t, os.WriteFile(orphan, []byte("orphan"), 0o644))
	require.NoError(t, os.Chtimes(orphan, old, old))

	deleted, err := svc.CleanupOldBackups(7)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	assert.NoFileExists(t, filepath.Join(backupDir, "bjj_crm_"+oldTS+".db"))
	assert.NoFileExists(t, filepath.Join(backupDir, "backup_metadata_"+oldTS+".json"))
	assert.NoFileExists(t, orphan)

	assert.FileExists(t, filepath.Join(backupDir, "bjj_crm_"+freshTS+".db"))
	assert.FileExists(t, filepath.Join(backupDir, "backup_metadata_"+freshTS+".json"))
}

func TestBackupSize(t *testing.T) {
	svc, _, _ := newTestBackupService(t)

	rec, err := svc.CreateBackup(false)
	require.NoError(t, err)

	want := mustSize(t, rec.DBFile) + mustSize(t, rec.MetadataFile)
	assert.Equal(t, want, svc.BackupSize(rec))
}

func mustSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.size), "size %d", tt.size)
	}
}

func TestExtractArchiveRejectsTraversal(t *testing.T) {
	svc, _, _ := newTestBackupService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.appDir, "go.mod"), []byte("module test\n"), 0o644))

	rec, err := svc.CreateBackup(true)
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, extractArchive(rec.FilesFile, dest))
	assert.FileExists(t, filepath.Join(dest, "go.mod"))
}

// writeBackupTriad раскладывает в каталоге копию с заданной меткой времени
func writeBackupTriad(t *testing.T, backupDir, ts string, modTime time.Time) {
	t.Helper()

	dbFile := filepath.Join(backupDir, fmt.Sprintf("bjj_crm_%s.db", ts))
	metaFile := filepath.Join(backupDir, fmt.Sprintf("backup_metadata_%s.json", ts))

	require.NoError(t, os.WriteFile(dbFile, []byte("db "+ts), 0o644))

	rec := model.BackupRecord{
		Timestamp:  ts,
		CreatedAt:  modTime.Format(time.RFC3339),
		DBFile:     dbFile,
		AppVersion: "1.0.0-test",
		BackupType: model.BackupTypeManual,
		FileSizes:  map[string]int64{},
		Checksums:  map[string]string{},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(metaFile, data, 0o644))

	require.NoError(t, os.Chtimes(dbFile, modTime, modTime))
	require.NoError(t, os.Chtimes(metaFile, modTime, modTime))
}
