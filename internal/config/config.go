package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// AppVersion записывается в метаданные резервных копий
const AppVersion = "1.0.0"

type Config struct {
	DBPath        string
	BackupDir     string
	ExportDir     string
	AppDir        string
	MigrationsDir string
	TelegramToken string
	TelegramChat  string
	Environment   string
	LogPath       string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBPath:        os.Getenv("DB_PATH"),
		BackupDir:     os.Getenv("BACKUP_DIR"),
		ExportDir:     os.Getenv("EXPORT_DIR"),
		AppDir:        os.Getenv("APP_DIR"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		TelegramChat:  os.Getenv("TELEGRAM_CHAT_ID"),
		Environment:   os.Getenv("ENV"),
		LogPath:       os.Getenv("LOG_PATH"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.AppDir == "" {
		cfg.AppDir = "."
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "bjj_crm.db"
	}
	if cfg.BackupDir == "" {
		cfg.BackupDir = "backups"
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "exports"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	return cfg, nil
}
