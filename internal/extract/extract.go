// Package extract loads resume text from files on disk.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedFormat is returned for file extensions the loader does not know.
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	// ErrTooLarge is returned when a document expands beyond maxDocumentBytes.
	ErrTooLarge = errors.New("resume document is too large")
)

// maxDocumentBytes bounds the decompressed body of a .docx file.
var maxDocumentBytes int64 = 8 << 20

// Load reads path and returns its text. The format is chosen by extension:
// .txt and .md are read as is, .pdf and .docx are converted to plain text.
func Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume %q: %w", path, err)
	}

	text, err := FromBytes(ctx, data, filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("resume %q: %w", path, err)
	}
	return text, nil
}

// FromBytes extracts text from an in-memory payload named fileName.
func FromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".txt", ".md", ".text", "":
		return string(data), nil
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") != "word/document.xml" {
			continue
		}

		if f.UncompressedSize64 > uint64(maxDocumentBytes) {
			return "", fmt.Errorf("%w: docx body declares %d bytes", ErrTooLarge, f.UncompressedSize64)
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open docx body: %w", err)
		}
		defer rc.Close()

		body, err := io.ReadAll(io.LimitReader(rc, maxDocumentBytes+1))
		if err != nil {
			return "", fmt.Errorf("read docx body: %w", err)
		}
		if int64(len(body)) > maxDocumentBytes {
			return "", fmt.Errorf("%w: docx body exceeds %d bytes", ErrTooLarge, maxDocumentBytes)
		}

		return docxText(bytes.NewReader(body))
	}

	return "", errors.New("docx has no word/document.xml")
}

// docxText keeps character data and turns paragraph and line breaks into newlines.
func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var b strings.Builder

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode docx body: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
