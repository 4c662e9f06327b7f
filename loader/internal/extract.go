package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ledongpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// SupportedExts are the file types the ingestion pipeline picks up.
var SupportedExts = []string{".txt", ".md", ".pdf"}

// ExtractText turns a source file into plain text. Unsupported extensions
// fall back to a raw byte read instead of failing; a corrupt or unreadable
// file returns an error the caller skips over, never aborting a run.
func ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		return readFile(path)
	case ".md":
		text, err := readFile(path)
		if err != nil {
			return "", err
		}
		return stripMarkdown(text), nil
	case ".pdf":
		return extractPDF(path)
	default:
		return readFile(path)
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// extractPDF validates the document with pdfcpu before handing it to the
// text extractor, so damaged files are skipped instead of producing garbage.
func extractPDF(path string) (string, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return "", fmt.Errorf("invalid pdf %s: %w", path, err)
	}

	f, r, err := ledongpdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}

var (
	mdCodeFence = regexp.MustCompile("(?m)^```.*$")
	mdHeading   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdImage     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdEmphasis  = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	mdInline    = regexp.MustCompile("`([^`]*)`")
	mdHTMLTag   = regexp.MustCompile(`<[^>]+>`)
)

// stripMarkdown renders markdown to plain-ish text: formatting markers go,
// the content stays.
func stripMarkdown(text string) string {
	text = mdCodeFence.ReplaceAllString(text, "")
	text = mdHeading.ReplaceAllString(text, "")
	text = mdImage.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdEmphasis.ReplaceAllString(text, "$1")
	text = mdInline.ReplaceAllString(text, "$1")
	text = mdHTMLTag.ReplaceAllString(text, "")
	return text
}
