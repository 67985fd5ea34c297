package resume

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	pdf "github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format: only pdf and docx are allowed")
	ErrTooLarge          = fmt.Errorf("resume exceeds %d bytes", MaxBytes)
	ErrEmpty             = errors.New("resume file is empty")
)

// Inspect validates an uploaded resume and returns its metadata. Only
// .pdf and .docx are accepted; the content must parse as that format.
func Inspect(filename string, data []byte, lastModified time.Time) (Meta, error) {
	if len(data) == 0 {
		return Meta{}, ErrEmpty
	}
	if len(data) > MaxBytes {
		return Meta{}, ErrTooLarge
	}
	meta := Meta{
		Name:         filepath.Base(filename),
		Size:         int64(len(data)),
		LastModified: lastModified.UnixMilli(),
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		pages, err := countPDFPages(data)
		if err != nil {
			return Meta{}, fmt.Errorf("read pdf: %w", err)
		}
		meta.Type = MimePDF
		meta.Pages = pages
	case ".docx":
		if err := checkDocx(data); err != nil {
			return Meta{}, fmt.Errorf("read docx: %w", err)
		}
		meta.Type = MimeDOCX
	default:
		return Meta{}, ErrUnsupportedFormat
	}
	return meta, nil
}

func countPDFPages(data []byte) (n int, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n = r.NumPage()
	if n == 0 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}

func checkDocx(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return nil
		}
	}
	return errors.New("no document.xml found in docx")
}
