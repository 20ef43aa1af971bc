// Package extract converts uploaded files into plain text sources.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/fwojciec/sourcebook"
	"github.com/ledongthuc/pdf"
)

// Ensure Extractor implements sourcebook.TextExtractor at compile time.
var _ sourcebook.TextExtractor = (*Extractor)(nil)

// Extractor extracts readable text from uploaded file bytes. Extraction
// failures become marker-prefixed placeholder content rather than errors, so
// a bad file never fails the upload that carried it.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText extracts readable text from an uploaded file.
func (e *Extractor) ExtractText(ctx context.Context, file *sourcebook.File) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	typ := sourcebook.MapFileType(file.Name, file.MIME)

	switch {
	case typ.Media():
		return sourcebook.MediaPlaceholder(typ, file.Name), nil

	case typ == sourcebook.SourceTypePDF:
		text, err := extractPDF(file.Data)
		if err != nil {
			return sourcebook.MarkerPDFError + " " + err.Error(), nil
		}
		return text, nil

	case typ == sourcebook.SourceTypeDOCX:
		text, err := extractDOCX(file.Data)
		if err != nil {
			return sourcebook.MarkerDOCXError + " " + err.Error(), nil
		}
		return text, nil
	}

	text, err := decodeText(file.Data)
	if err != nil {
		return sourcebook.MarkerTextError + " " + err.Error(), nil
	}
	return text, nil
}

// extractPDF extracts text from PDF bytes, page by page. Text items within a
// page are joined with single spaces, pages with a blank line. The pdf
// package panics on some malformed inputs, so parsing runs under a recover.
func extractPDF(data []byte) (text string, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", errors.New("missing %PDF header")
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content := page.Content()
		items := make([]string, 0, len(content.Text))
		for _, item := range content.Text {
			items = append(items, item.S)
		}
		pages = append(pages, strings.Join(items, " "))
	}

	return strings.TrimSpace(strings.Join(pages, "\n\n")), nil
}

// extractDOCX extracts text from a DOCX container, one line per paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errors.New("not a valid DOCX container")
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(rc); err != nil {
		return "", fmt.Errorf("parsing document XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return "", errors.New("empty document XML")
	}
	body := root.SelectElement("body")
	if body == nil {
		return "", errors.New("document XML has no body")
	}

	var sb strings.Builder
	for i, para := range body.SelectElements("p") {
		if i > 0 {
			sb.WriteString("\n")
		}
		// Text runs may sit directly under the paragraph or nest inside
		// hyperlinks and other containers.
		for _, t := range para.FindElements(".//t") {
			sb.WriteString(t.Text())
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// decodeText passes plain text through after checking it really is text.
func decodeText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("content is not valid UTF-8")
	}
	if !isProbablyText(data) {
		return "", errors.New("content appears to be binary")
	}
	return string(data), nil
}

// isProbablyText reports whether data looks like readable text: no NUL
// bytes, and mostly printable characters in the first 4KB.
func isProbablyText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	sample := data
	if len(sample) > 4096 {
		sample = sample[:4096]
	}

	printable := 0
	for _, c := range sample {
		if c == 0x00 {
			return false
		}
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c <= 0x7E) || c >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.9
}
