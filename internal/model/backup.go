package model

// BackupType тип резервной копии
type BackupType string

const (
	BackupTypeManual    BackupType = "manual"
	BackupTypeScheduled BackupType = "scheduled"
)

// BackupRecord метаданные одной резервной копии.
// Сериализуется в backup_metadata_<timestamp>.json рядом с файлами копии.
type BackupRecord struct {
	Timestamp    string            `json:"timestamp"` // ключ копии, YYYYMMDD_HHMMSS
	CreatedAt    string            `json:"created_at"`
	DBFile       string            `json:"db_file"`
	FilesFile    string            `json:"files_file,omitempty"`
	IncludeFiles bool              `json:"include_files"`
	AppVersion   string            `json:"app_version"`
	BackupType   BackupType        `json:"backup_type"`
	Description  string            `json:"description"`
	FileSizes    map[string]int64  `json:"file_sizes"`
	Checksums    map[string]string `json:"checksums"` // SHA-256 файлов копии
	MetadataFile string            `json:"metadata_file,omitempty"`
}

// Files возвращает пути всех файлов копии (пустые - если файла нет)
func (r *BackupRecord) Files() []string {
	return []string{r.DBFile, r.FilesFile, r.MetadataFile}
}
