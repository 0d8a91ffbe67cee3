package service

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AmadeyM111/CRM-for-Martial-Arts-Academy/internal/model"
)

// backupTimestampLayout ключ копии: YYYYMMDD_HHMMSS
const backupTimestampLayout = "20060102_150405"

// filesAllowlist что попадает в архив файлов приложения
var filesAllowlist = []string{
	"cmd",
	"internal",
	"migrations",
	"go.mod",
	"go.sum",
	".env",
}

type BackupService struct {
	appDir     string
	backupDir  string
	dbPath     string
	appVersion string
	logger     *zap.Logger
}

func NewBackupService(appDir, backupDir, dbPath, appVersion string, logger *zap.Logger) *BackupService {
	return &BackupService{
		appDir:     appDir,
		backupDir:  backupDir,
		dbPath:     dbPath,
		appVersion: appVersion,
		logger:     logger,
	}
}

// CreateBackup снимает копию базы и, опционально, файлов приложения
func (s *BackupService) CreateBackup(includeFiles bool) (*model.BackupRecord, error) {
	return s.create(includeFiles, model.BackupTypeManual)
}

// CreateScheduledBackup снимает копию базы из фонового планировщика
func (s *BackupService) CreateScheduledBackup() (*model.BackupRecord, error) {
	return s.create(false, model.BackupTypeScheduled)
}

func (s *BackupService) create(includeFiles bool, backupType model.BackupType) (*model.BackupRecord, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	now := time.Now()
	ts := now.Format(backupTimestampLayout)

	rec := &model.BackupRecord{
		Timestamp:    ts,
		CreatedAt:    now.Format(time.RFC3339),
		IncludeFiles: includeFiles,
		AppVersion:   s.appVersion,
		BackupType:   backupType,
		Description:  "Резервная копия BJJ CRM",
		FileSizes:    map[string]int64{},
		Checksums:    map[string]string{},
	}

	dbBackup := filepath.Join(s.backupDir, fmt.Sprintf("bjj_crm_%s.db", ts))
	if err := copyFile(s.dbPath, dbBackup); err != nil {
		return nil, fmt.Errorf("backup database: %w", err)
	}
	rec.DBFile = dbBackup

	// Частичная копия убирается за собой: осиротевший снимок без
	// метаданных не должен оставаться в каталоге
	cleanup := func() {
		os.Remove(dbBackup)
		if rec.FilesFile != "" {
			os.Remove(rec.FilesFile)
		}
	}

	if err := s.recordFile(rec, "database", dbBackup); err != nil {
		cleanup()
		return nil, err
	}

	if includeFiles {
		filesBackup := filepath.Join(s.backupDir, fmt.Sprintf("bjj_crm_files_%s.tar.gz", ts))
		if err := s.createFilesArchive(filesBackup); err != nil {
			cleanup()
			return nil, fmt.Errorf("backup files: %w", err)
		}
		rec.FilesFile = filesBackup

		if err := s.recordFile(rec, "files", filesBackup); err != nil {
			cleanup()
			return nil, err
		}
	}

	// Метаданные пишутся последними и атомарно: запись о копии
	// либо существует целиком, либо не существует вовсе
	metaPath := filepath.Join(s.backupDir, fmt.Sprintf("backup_metadata_%s.json", ts))
	rec.MetadataFile = metaPath
	if err := writeJSONAtomic(metaPath, rec); err != nil {
		cleanup()
		return nil, fmt.Errorf("write backup metadata: %w", err)
	}

	s.logger.Info("Backup created",
		zap.String("timestamp", ts),
		zap.Bool("include_files", includeFiles),
		zap.String("db_file", dbBackup))

	return rec, nil
}

// recordFile записывает размер и контрольную сумму файла в метаданные
func (s *BackupService) recordFile(rec *model.BackupRecord, key, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat backup file: %w", err)
	}
	rec.FileSizes[key] = info.Size()

	sum, err := sha256File(path)
	if err != nil {
		return fmt.Errorf("checksum backup file: %w", err)
	}
	rec.Checksums[key] = sum

	return nil
}

// ListBackups возвращает все копии, новые первыми.
// Нечитаемые или битые метаданные молча пропускаются.
func (s *BackupService) ListBackups() ([]*model.BackupRecord, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var records []*model.BackupRecord
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "backup_metadata_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(s.backupDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var rec model.BackupRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		rec.MetadataFile = path
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})

	return records, nil
}

// RestoreBackup восстанавливает базу (и, опционально, файлы) из копии.
// Текущая база всегда сохраняется рядом до перезаписи.
func (s *BackupService) RestoreBackup(rec *model.BackupRecord, restoreFiles bool) error {
	if rec.DBFile != "" && fileExists(rec.DBFile) {
		safety := fmt.Sprintf("%s.backup_%s", s.dbPath, time.Now().Format(backupTimestampLayout))
		if err := copyFile(s.dbPath, safety); err != nil {
			return fmt.Errorf("save current database: %w", err)
		}
		s.logger.Info("Current database saved before restore", zap.String("path", safety))

		if err := copyFile(rec.DBFile, s.dbPath); err != nil {
			return fmt.Errorf("restore database: %w", err)
		}
	}

	if restoreFiles && rec.FilesFile != "" && fileExists(rec.FilesFile) {
		if err := extractArchive(rec.FilesFile, s.appDir); err != nil {
			return fmt.Errorf("restore files: %w", err)
		}
	}

	s.logger.Info("Backup restored",
		zap.String("timestamp", rec.Timestamp),
		zap.Bool("restore_files", restoreFiles))

	return nil
}

// DeleteBackup удаляет все файлы копии, терпимо к уже отсутствующим
func (s *BackupService) DeleteBackup(rec *model.BackupRecord) error {
	for _, path := range rec.Files() {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete backup file: %w", err)
		}
	}

	s.logger.Info("Backup deleted", zap.String("timestamp", rec.Timestamp))
	return nil
}

// CleanupOldBackups удаляет копии старше keep_days. Триада копии удаляется
// целиком по её временной метке; файлы без метаданных подчищаются по
// времени изменения. Возвращает количество удалённых файлов.
func (s *BackupService) CleanupOldBackups(keepDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -keepDays)
	deleted := 0

	records, err := s.ListBackups()
	if err != nil {
		return 0, err
	}

	alive := map[string]bool{}
	for _, rec := range records {
		ts, err := time.ParseInLocation(backupTimestampLayout, rec.Timestamp, time.Local)
		if err != nil || !ts.Before(cutoff) {
			for _, path := range rec.Files() {
				if path != "" {
					alive[filepath.Base(path)] = true
				}
			}
			continue
		}

		for _, path := range rec.Files() {
			if path == "" {
				continue
			}
			if err := os.Remove(path); err == nil {
				deleted++
			}
		}
	}

	// Файлы, на которые не ссылается ни одна живая запись
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return deleted, nil
		}
		return deleted, fmt.Errorf("read backup dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || alive[e.Name()] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.backupDir, e.Name())); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		s.logger.Info("Old backups cleaned up",
			zap.Int("deleted_files", deleted),
			zap.Int("keep_days", keepDays))
	}

	return deleted, nil
}

// BackupSize возвращает суммарный размер файлов копии в байтах
func (s *BackupService) BackupSize(rec *model.BackupRecord) int64 {
	var total int64
	for _, path := range rec.Files() {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil {
			total += info.Size()
		}
	}
	return total
}

// FormatSize форматирует размер в человекочитаемый вид
func FormatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}

	units := []string{"B", "KB", "MB", "GB"}
	size := float64(sizeBytes)
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}

	return fmt.Sprintf("%.1f %s", size, units[i])
}

// createFilesArchive собирает tar.gz из разрешённого списка путей приложения
func (s *BackupService) createFilesArchive(archivePath string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	for _, rel := range filesAllowlist {
		full := filepath.Join(s.appDir, rel)
		if _, err := os.Stat(full); err != nil {
			continue // отсутствующие пути пропускаем
		}
		if err := addToArchive(tw, full, rel); err != nil {
			tw.Close()
			gw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar writer: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return nil
}

func addToArchive(tw *tar.Writer, fullPath, arcName string) error {
	return filepath.WalkDir(fullPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(fullPath, path)
		if err != nil {
			return err
		}
		name := arcName
		if rel != "." {
			name = filepath.ToSlash(filepath.Join(arcName, rel))
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() && !info.IsDir() {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("tar header %s: %w", name, err)
		}
		hdr.Name = name

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("write tar header %s: %w", name, err)
		}

		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		if _, err := io.Copy(tw, src); err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}
		return nil
	})
}

// extractArchive распаковывает tar.gz поверх каталога приложения,
// отбрасывая записи, выходящие за его пределы
func extractArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	cleanDest := filepath.Clean(destDir)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read archive: %w", err)
		}

		target := filepath.Join(cleanDest, hdr.Name)
		if !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return fmt.Errorf("unsafe path in archive: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create dir for %s: %w", hdr.Name, err)
			}
			dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode())
			if err != nil {
				return fmt.Errorf("create file %s: %w", hdr.Name, err)
			}
			if _, err := io.Copy(dst, tr); err != nil {
				dst.Close()
				return fmt.Errorf("extract %s: %w", hdr.Name, err)
			}
			dst.Close()
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeJSONAtomic пишет JSON во временный файл и переименовывает его на место
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".meta-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
