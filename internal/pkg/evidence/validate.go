package evidence

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFileSize is the upper bound for a single evidence file (10 MiB).
	MaxFileSize int64 = 10 << 20
	// MaxFileNameLength matches the file_name column, in bytes.
	MaxFileNameLength = 255
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

var allowedMime = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var (
	ErrUnsupportedType = errors.New("이미지(JPG, PNG, GIF, WEBP) 또는 PDF 파일만 첨부할 수 있습니다")
	ErrFileTooLarge    = errors.New("첨부 파일은 10MB를 넘을 수 없습니다")
	ErrEmptyFile       = errors.New("빈 파일은 첨부할 수 없습니다")
)

// IsAllowedContentType reports whether a sniffed MIME type may be stored.
func IsAllowedContentType(contentType string) bool {
	return allowedMime[contentType]
}

// ValidateSize checks the declared upload size.
func ValidateSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// ValidateBySniff checks the provided filename (extension) and the first bytes (head)
// against the evidence whitelist. Returns the detected mime or an error.
func ValidateBySniff(filename string, head []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrUnsupportedType
	}

	detected := http.DetectContentType(head)

	// Block obvious scriptable types regardless of extension
	if strings.HasPrefix(detected, "text/html") || strings.HasPrefix(detected, "application/xhtml") {
		return "", ErrUnsupportedType
	}

	if !allowedMime[detected] {
		return "", ErrUnsupportedType
	}
	if (detected == "application/pdf") != (ext == ".pdf") {
		return "", ErrUnsupportedType
	}
	return detected, nil
}

// TrimFileName drops any directory part and shortens the name to
// MaxFileNameLength bytes on a rune boundary, keeping the extension.
func TrimFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if len(name) <= MaxFileNameLength {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > MaxFileNameLength/4 {
		ext = ""
	}
	stem := name[:len(name)-len(filepath.Ext(name))]
	limit := MaxFileNameLength - len(ext)
	for len(stem) > limit {
		_, size := utf8.DecodeLastRuneInString(stem)
		stem = stem[:len(stem)-size]
	}
	return stem + ext
}
