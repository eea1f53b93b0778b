package main

import (
	"archive/zip"
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	rxSpace    = regexp.MustCompile(`\s+`)
	rxNonAlnum = regexp.MustCompile(`[^A-Za-z0-9 ]`)
)

// normalizeCorpus folds whitespace to single spaces, drops everything that
// is not an ASCII letter, digit or space, and uppercases the result.
func normalizeCorpus(text string) string {
	text = rxSpace.ReplaceAllString(text, " ")
	text = rxNonAlnum.ReplaceAllString(text, "")
	return strings.ToUpper(text)
}

// corpusBuilder accumulates normalized corpus text. Each chunk handed to
// add is normalized on its own and separated from the previous one by a
// single space, so chunks never fuse into one word.
type corpusBuilder struct {
	b strings.Builder
}

func (c *corpusBuilder) add(text string) {
	text = normalizeCorpus(text)
	if text == "" {
		return
	}
	if n := c.b.Len(); n > 0 && c.b.String()[n-1] != ' ' && text[0] != ' ' {
		c.b.WriteByte(' ')
	}
	c.b.WriteString(text)
}

func (c *corpusBuilder) String() string {
	return c.b.String()
}

// readCorpus loads every file in paths and returns their normalized text.
func readCorpus(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no corpus files given")
	}

	var c corpusBuilder
	for _, path := range paths {
		if err := readCorpusFile(path, &c); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
	}
	return c.String(), nil
}

func readCorpusFile(path string, c *corpusBuilder) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDF(path, c)
	case ".docx":
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return readDOCX(raw, c)
	default:
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return readText(f, c)
	}
}

// readText feeds r to c a line at a time.
func readText(r io.Reader, c *corpusBuilder) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		c.add(line)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// readPDF adds the text layer of every page. A page whose content stream
// cannot be decoded is skipped; a document with no usable page is an
// error because it would train an empty model.
func readPDF(path string, c *corpusBuilder) error {
	f, r, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := 0
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil || strings.TrimSpace(content) == "" {
			continue
		}
		c.add(content)
		pages++
	}
	if pages == 0 {
		return fmt.Errorf("none of %d pages has a text layer", r.NumPage())
	}
	return nil
}

// readDOCX adds word/document.xml one paragraph at a time.
func readDOCX(raw []byte, c *corpusBuilder) error {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return fmt.Errorf("open docx zip: %w", err)
	}

	rc, err := zr.Open("word/document.xml")
	if err != nil {
		return fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var para strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decode document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			inText = t.Name.Local == "t"
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				c.add(para.String())
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	c.add(para.String())
	return nil
}
