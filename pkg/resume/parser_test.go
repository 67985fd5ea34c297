package resume

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docx(t *testing.T, entries ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<w:document/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestInspectDocx(t *testing.T) {
	data := docx(t, "[Content_Types].xml", "word/document.xml")
	modified := time.UnixMilli(1_681_516_800_000)

	meta, err := Inspect("uploads/alex-cv.docx", data, modified)
	require.NoError(t, err)
	assert.Equal(t, Meta{
		Name:         "alex-cv.docx",
		Size:         int64(len(data)),
		Type:         MimeDOCX,
		LastModified: 1_681_516_800_000,
	}, meta)
}

func TestInspectRejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     error
	}{
		{name: "empty", filename: "cv.pdf", data: nil, want: ErrEmpty},
		{name: "too large", filename: "cv.pdf", data: make([]byte, MaxBytes+1), want: ErrTooLarge},
		{name: "wrong extension", filename: "cv.txt", data: []byte("hello"), want: ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.filename, tt.data, time.Now())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestInspectMalformedContent(t *testing.T) {
	_, err := Inspect("cv.pdf", []byte("definitely not a pdf"), time.Now())
	assert.ErrorContains(t, err, "read pdf")

	_, err = Inspect("cv.docx", docx(t, "other.xml"), time.Now())
	assert.ErrorContains(t, err, "no document.xml")
}
