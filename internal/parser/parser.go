package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"docqa/internal/util"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrNoExtractableText    = errors.New("no extractable text found in document")
)

// AllowedExtensions lists the accepted upload types, lower case with the dot.
var AllowedExtensions = []string{".txt", ".pdf"}

// ParseError reports a file whose content could not be turned into text.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", filepath.Base(e.Path), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidateExtension checks the file name suffix only; it never touches disk.
func ValidateExtension(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
}

// Parse extracts sanitized text from a .txt or .pdf file.
func Parse(path string) (string, error) {
	if err := ValidateExtension(path); err != nil {
		return "", &ParseError{Path: path, Err: err}
	}
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = parsePDF(path)
	default:
		text, err = parseText(path)
	}
	if err != nil {
		return "", &ParseError{Path: path, Err: err}
	}
	text = util.SanitizeText(text)
	if text == "" {
		return "", &ParseError{Path: path, Err: ErrNoExtractableText}
	}
	return text, nil
}

func parseText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("file is not valid UTF-8")
	}
	return string(b), nil
}

func parsePDF(path string) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, reader); err != nil {
		return "", fmt.Errorf("read extracted text: %w", err)
	}
	return buf.String(), nil
}
