package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// encodingProbeSize размер префикса файла для статистического определения кодировки
const encodingProbeSize = 10 * 1024

// minDetectConfidence порог уверенности детектора (шкала 0-100)
const minDetectConfidence = 70

// fallbackEncodings кодировки, которые пробуем по очереди при низкой уверенности.
// Порядок важен: сначала UTF-8, затем легаси-кириллица.
var fallbackEncodings = []string{"utf-8", "windows-1251", "cp1251", "iso-8859-1"}

// detectEncoding определяет кодировку файла по префиксу.
// При любой ошибке ввода-вывода возвращает utf-8.
func detectEncoding(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "utf-8"
	}
	defer f.Close()

	buf := make([]byte, encodingProbeSize)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "utf-8"
	}

	return detectEncodingBytes(buf[:n])
}

// detectEncodingBytes определяет кодировку по содержимому
func detectEncodingBytes(data []byte) string {
	detector := chardet.NewTextDetector()
	best, err := detector.DetectBest(data)
	if err == nil && best.Confidence >= minDetectConfidence {
		return normalizeEncoding(best.Charset)
	}

	// Низкая уверенность - пробуем известные кодировки по очереди
	probe := data
	if len(probe) > 1024 {
		probe = probe[:1024]
	}
	for _, name := range fallbackEncodings {
		if decodable(probe, name) {
			return name
		}
	}

	return "utf-8"
}

func normalizeEncoding(charset string) string {
	return strings.ToLower(strings.TrimSpace(charset))
}

// decodable проверяет что данные читаются в указанной кодировке без потерь
func decodable(data []byte, enc string) bool {
	switch normalizeEncoding(enc) {
	case "utf-8", "ascii":
		return utf8.Valid(data)
	default:
		dec := decoderFor(enc)
		if dec == nil {
			return false
		}
		out, err := dec.Bytes(data)
		if err != nil {
			return false
		}
		// Неопределённые байты charmap отдаёт как U+FFFD
		return !bytes.ContainsRune(out, utf8.RuneError)
	}
}

func decoderFor(enc string) *encoding.Decoder {
	switch normalizeEncoding(enc) {
	case "windows-1251", "cp1251":
		return charmap.Windows1251.NewDecoder()
	case "iso-8859-1", "latin-1", "latin1":
		return charmap.ISO8859_1.NewDecoder()
	case "windows-1252":
		return charmap.Windows1252.NewDecoder()
	case "koi8-r":
		return charmap.KOI8R.NewDecoder()
	}
	return nil
}

// decodeBytes переводит содержимое файла в UTF-8 строку
func decodeBytes(data []byte, enc string) (string, error) {
	switch normalizeEncoding(enc) {
	case "", "utf-8", "ascii":
		return string(data), nil
	}

	dec := decoderFor(enc)
	if dec == nil {
		// Неизвестная детектору кодировка - читаем как есть
		return string(data), nil
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}

// delimiterCandidates возможные разделители полей CSV
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// sniffDelimiter подбирает разделитель по первой строке файла
func sniffDelimiter(sample string) rune {
	line := sample
	if i := strings.IndexAny(sample, "\r\n"); i >= 0 {
		line = sample[:i]
	}

	best := ','
	bestCount := 0
	for _, cand := range delimiterCandidates {
		count := 0
		inQuotes := false
		for _, r := range line {
			switch {
			case r == '"':
				inQuotes = !inQuotes
			case r == cand && !inQuotes:
				count++
			}
		}
		if count > bestCount {
			best, bestCount = cand, count
		}
	}

	return best
}
