package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var supportedExtensions = map[string]struct{}{
	".pdf": {},
	".txt": {},
}

// SupportedExtension reports whether the analyzer can extract text from a
// file with the given name.
func SupportedExtension(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Text extracts cleaned plain text from a document on disk. The original
// file name decides the format; path may point at a temp copy.
func Text(path, originalName string) (string, error) {
	switch strings.ToLower(filepath.Ext(originalName)) {
	case ".pdf":
		text, err := pdfText(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from %q: %w", originalName, err)
		}
		return Clean(text), nil
	case ".txt":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %q: %w", originalName, err)
		}
		return Clean(string(raw)), nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(originalName))
	}
}

func pdfText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNum, err)
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

var (
	pageMarkerRe = regexp.MustCompile(`(?im)^\s*page\s+\d+\s+of\s+\d+\s*$`)
	numberLineRe = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	spacesRe     = regexp.MustCompile(`[ \t]+`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// Clean strips page-number artifacts and collapses excessive whitespace while
// keeping paragraph breaks intact; the chunker depends on them.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageMarkerRe.ReplaceAllString(text, "")
	text = numberLineRe.ReplaceAllString(text, "")
	text = spacesRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
