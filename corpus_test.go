package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCorpus(t *testing.T) {
	got := normalizeCorpus("It's a\tfar,\nfar better thing -- 1859!")
	assert.Equal(t, "ITS A FAR FAR BETTER THING  1859", got)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9 ]*$`), got)
}

func TestReadCorpusJoinsFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("world\n"), 0o644))

	got, err := readCorpus([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD ", got)
}

func TestReadCorpusDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.docx")
	raw := buildDOCX(t, `<w:document><w:body><w:p><w:r><w:t>Chapter 1</w:t></w:r></w:p><w:p><w:r><w:t>Hello world.</w:t></w:r></w:p></w:body></w:document>`)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	got, err := readCorpus([]string{path})
	require.NoError(t, err)
	assert.Equal(t, "CHAPTER 1 HELLO WORLD", got)
}

func TestReadDOCXMissingDocument(t *testing.T) {
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var c corpusBuilder
	assert.Error(t, readDOCX(b.Bytes(), &c))
	assert.Empty(t, c.String())
}

func TestReadCorpusPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, buildPDF(t, "Four score, and seven years ago!"), 0o644))

	got, err := readCorpus([]string{path})
	require.NoError(t, err)
	assert.Contains(t, got, "FOUR SCORE AND SEVEN YEARS AGO")
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9 ]*$`), got)

	m, err := buildModel(got, 3)
	require.NoError(t, err)
	_, ok := m.logProb("SEV")
	assert.True(t, ok)
}

func TestCorpusBuilderSeparatesChunks(t *testing.T) {
	var c corpusBuilder
	c.add("end")
	c.add("start\n")
	c.add("")
	c.add("next")
	assert.Equal(t, "END START NEXT", c.String())
}

func TestReadCorpusErrors(t *testing.T) {
	_, err := readCorpus(nil)
	assert.Error(t, err)

	_, err = readCorpus([]string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)

	bogus := filepath.Join(t.TempDir(), "bogus.pdf")
	require.NoError(t, os.WriteFile(bogus, []byte("not a pdf"), 0o644))
	_, err = readCorpus([]string{bogus})
	assert.Error(t, err)
}

func TestReadCorpusTestdata(t *testing.T) {
	got, err := readCorpus([]string{filepath.Join("testdata", "corpus.txt")})
	require.NoError(t, err)
	assert.Contains(t, got, "FOUR SCORE AND SEVEN YEARS AGO")
}

// buildPDF writes a single page PDF that shows text in Helvetica.
func buildPDF(t *testing.T, text string) []byte {
	t.Helper()
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

func buildDOCX(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zip.NewWriter(&b)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	xml := `<?xml version="1.0" encoding="UTF-8"?>` + bodyXML
	_, err = f.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return b.Bytes()
}
