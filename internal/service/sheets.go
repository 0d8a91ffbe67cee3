package service

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sheetIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`),
		regexp.MustCompile(`[?&]id=([a-zA-Z0-9-_]+)`),
	}
	sheetGIDPattern = regexp.MustCompile(`gid=(\d+)`)
)

// ConvertToCSVURL переводит ссылку на Google Sheets в ссылку на CSV-экспорт.
// Ссылку, уже указывающую на экспорт, возвращает без изменений.
func ConvertToCSVURL(rawURL string) (string, error) {
	if strings.Contains(rawURL, "/export?format=csv") {
		return rawURL, nil
	}

	var sheetID string
	for _, p := range sheetIDPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			sheetID = m[1]
			break
		}
	}
	if sheetID == "" {
		return "", fmt.Errorf("не удалось извлечь ID таблицы из URL")
	}

	csvURL := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", sheetID)
	if m := sheetGIDPattern.FindStringSubmatch(rawURL); m != nil {
		csvURL += "&gid=" + m[1]
	}

	return csvURL, nil
}
