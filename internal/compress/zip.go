package compress

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// NewZipReader opens the first CSV entry of a ZIP archive. The central
// directory sits at the end of the file, so the archive is buffered, up to
// limit bytes.
func NewZipReader(r io.ReadCloser, limit int64) (io.ReadCloser, error) {
	defer r.Close()

	data, err := io.ReadAll(capReader(r, limit))
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	for _, f := range zr.File {
		if !f.FileInfo().IsDir() && isCSV(f.Name) {
			return f.Open()
		}
	}
	return nil, ErrNoCSV
}

// ZipWriter packs everything written to it into a single ZIP entry.
type ZipWriter struct {
	archive *zip.Writer
	entry   io.Writer
}

// NewZipWriter creates a ZipWriter with the given entry name inside the archive.
func NewZipWriter(w io.Writer, fileName string) (*ZipWriter, error) {
	archive := zip.NewWriter(w)
	entry, err := archive.Create(fileName)
	if err != nil {
		return nil, err
	}
	return &ZipWriter{archive: archive, entry: entry}, nil
}

func (z *ZipWriter) Write(p []byte) (int, error) {
	return z.entry.Write(p)
}

// Close flushes the ZIP central directory.
func (z *ZipWriter) Close() error {
	return z.archive.Close()
}
