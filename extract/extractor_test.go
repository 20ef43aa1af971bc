package extract_test

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("passes plain text through", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "notes.txt", Data: []byte("Hello, world.\n")}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.Equal(t, "Hello, world.\n", text)
	})

	t.Run("passes markdown and csv through", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()

		text, err := e.ExtractText(context.Background(), &sourcebook.File{
			Name: "README.md",
			Data: []byte("# Title\n\nBody."),
		})
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nBody.", text)

		text, err = e.ExtractText(context.Background(), &sourcebook.File{
			Name: "data.csv",
			Data: []byte("a,b\n1,2\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", text)
	})

	t.Run("flags binary content with a text marker", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "blob.txt", Data: []byte{0x00, 0x01, 0x02, 0xFF}}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, sourcebook.MarkerTextError))
		assert.True(t, sourcebook.IsExtractionError(text))
	})

	t.Run("flags invalid UTF-8 with a text marker", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "latin1.txt", Data: []byte{'c', 'a', 'f', 0xE9}}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, sourcebook.MarkerTextError))
	})

	t.Run("returns media placeholders", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()

		text, err := e.ExtractText(context.Background(), &sourcebook.File{
			Name: "photo.png",
			Data: []byte{0x89, 'P', 'N', 'G'},
		})
		require.NoError(t, err)
		assert.Equal(t, "[Image file: photo.png]", text)
		assert.True(t, sourcebook.IsMediaPlaceholder(text))

		text, err = e.ExtractText(context.Background(), &sourcebook.File{
			Name: "song.mp3",
			Data: []byte("ID3"),
		})
		require.NoError(t, err)
		assert.Equal(t, "[Audio file: song.mp3]", text)
	})

	t.Run("flags bytes without a PDF header", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "report.pdf", Data: []byte("not a pdf at all")}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, sourcebook.MarkerPDFError))
		assert.Contains(t, text, "%PDF")
	})

	t.Run("flags a corrupt PDF body", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "report.pdf", Data: []byte("%PDF-1.4\ngarbage")}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, sourcebook.MarkerPDFError))
	})

	t.Run("extracts DOCX paragraphs", func(t *testing.T) {
		t.Parallel()

		documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p><w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p></w:body></w:document>`

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "doc.docx", Data: docxBytes(t, documentXML)}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
	})

	t.Run("extracts text nested in hyperlinks", func(t *testing.T) {
		t.Parallel()

		documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>See </w:t></w:r><w:hyperlink><w:r><w:t>the docs</w:t></w:r></w:hyperlink><w:r><w:t>.</w:t></w:r></w:p></w:body></w:document>`

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "doc.docx", Data: docxBytes(t, documentXML)}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.Equal(t, "See the docs.", text)
	})

	t.Run("flags a DOCX that is not a zip", func(t *testing.T) {
		t.Parallel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "doc.docx", Data: []byte("plain text pretending")}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, sourcebook.MarkerDOCXError))
	})

	t.Run("flags a DOCX missing its document part", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("word/styles.xml")
		require.NoError(t, err)
		_, err = f.Write([]byte("<styles/>"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "doc.docx", Data: buf.Bytes()}

		text, err := e.ExtractText(context.Background(), file)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(text, sourcebook.MarkerDOCXError))
		assert.Contains(t, text, "word/document.xml")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e := extract.NewExtractor()
		file := &sourcebook.File{Name: "notes.txt", Data: []byte("hello")}

		_, err := e.ExtractText(ctx, file)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}
