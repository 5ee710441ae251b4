package textextract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExtractTxt(t *testing.T) {
	got, err := Extract("protocol.txt", []byte("  line one  \r\n\r\n line   two \n"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("normalized text = %q", got)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	for _, name := range []string{"image.png", "archive.tar.gz", "plain"} {
		_, err := Extract(name, []byte("data"))
		if !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("%s: expected ErrUnsupportedType, got %v", name, err)
		}
	}
}

func TestExtractCaseInsensitiveExtension(t *testing.T) {
	got, err := Extract("NOTES.TXT", []byte("hello"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if got != "hello" {
		t.Fatalf("text = %q", got)
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry failed: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip failed: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDOCX(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Intended purpose: </w:t></w:r><w:r><w:t>glucose monitoring</w:t></w:r></w:p>
    <w:p><w:r><w:t>Classification: class IIb</w:t></w:r></w:p>
  </w:body>
</w:document>`

	got, err := Extract("spec.docx", buildDOCX(t, docXML))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %q", len(lines), got)
	}
	if lines[0] != "Intended purpose: glucose monitoring" {
		t.Fatalf("first paragraph = %q", lines[0])
	}
	if lines[1] != "Classification: class IIb" {
		t.Fatalf("second paragraph = %q", lines[1])
	}
}

func TestExtractDOCXMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("other.xml")
	_, _ = w.Write([]byte("<x/>"))
	_ = zw.Close()

	if _, err := Extract("broken.docx", buf.Bytes()); err == nil {
		t.Fatalf("expected error for docx without document part")
	}
}

func TestExtractDOCSalvagesPrintableRuns(t *testing.T) {
	data := append([]byte{0x00, 0x01, 0x02}, []byte("Clinical evaluation summary")...)
	data = append(data, 0x00, 0x03)
	data = append(data, []byte("per MEDDEV guidance")...)
	data = append(data, 0xFF)

	got, err := Extract("legacy.doc", data)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !strings.Contains(got, "Clinical evaluation summary") || !strings.Contains(got, "per MEDDEV guidance") {
		t.Fatalf("salvaged text = %q", got)
	}
}

func TestExtractDOCNoText(t *testing.T) {
	if _, err := Extract("empty.doc", []byte{0x00, 0x01, 0x02, 0x03}); err == nil {
		t.Fatalf("expected error for doc with no printable runs")
	}
}

func TestNormalize(t *testing.T) {
	got := normalize("  a\t b \r\n\r\n c  ")
	if got != "a b\nc" {
		t.Fatalf("normalize = %q", got)
	}
}
