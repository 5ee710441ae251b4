// Package textextract pulls plain text out of uploaded documents so it can be
// embedded or inlined into chat context.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

var ErrUnsupportedType = errors.New("unsupported document type")

// Extract returns the plain text of a document, dispatching on the filename
// extension. Supported: .pdf, .docx, .doc, .txt.
func Extract(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".doc":
		return extractDOC(data)
	case ".txt":
		return normalize(string(data)), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))
	}
}

func extractPDF(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	return normalize(string(out)), nil
}

// extractDOCX reads word/document.xml from the OOXML archive and collects the
// text runs, one line per paragraph.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive failed: %w", err)
	}
	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open docx document part failed: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", errors.New("docx has no document part")
	}
	defer docXML.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(docXML)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx xml failed: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return normalize(sb.String()), nil
}

// extractDOC salvages printable runs from the legacy binary format. Good
// enough for context excerpts; there is no full CFB parser here.
func extractDOC(data []byte) (string, error) {
	var sb strings.Builder
	var run []rune
	flush := func() {
		// short runs are almost always structure bytes, not prose
		if len(run) >= 4 {
			sb.WriteString(string(run))
			sb.WriteString(" ")
		}
		run = run[:0]
	}
	for _, b := range data {
		r := rune(b)
		if r == '\r' || r == '\n' || r == '\t' || (unicode.IsPrint(r) && r < 0x7f) {
			run = append(run, r)
		} else {
			flush()
		}
	}
	flush()
	text := normalize(sb.String())
	if text == "" {
		return "", errors.New("no extractable text in doc file")
	}
	return text, nil
}

// normalize collapses whitespace runs and trims the result.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
