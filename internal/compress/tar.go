package compress

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"time"
)

// TarReader streams the first CSV entry of a TAR archive straight from the
// request body. Reading past limit bytes of archive fails with
// ErrArchiveTooLarge.
type TarReader struct {
	*tar.Reader
	body io.Closer
}

func NewTarReader(r io.ReadCloser, limit int64) (*TarReader, error) {
	tr := tar.NewReader(capReader(r, limit))
	for {
		header, err := tr.Next()
		if err == io.EOF {
			r.Close()
			return nil, ErrNoCSV
		}
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("open tar: %w", err)
		}
		if header.Typeflag == tar.TypeReg && isCSV(header.Name) {
			return &TarReader{Reader: tr, body: r}, nil
		}
	}
}

func (t *TarReader) Close() error {
	return t.body.Close()
}

// TarWriter buffers its input and emits a single-entry TAR archive on Close,
// since a tar header carries the entry size.
type TarWriter struct {
	w        io.Writer
	fileName string
	buf      bytes.Buffer
}

func NewTarWriter(w io.Writer, fileName string) *TarWriter {
	return &TarWriter{w: w, fileName: fileName}
}

func (t *TarWriter) Write(p []byte) (int, error) {
	return t.buf.Write(p)
}

func (t *TarWriter) Close() error {
	tw := tar.NewWriter(t.w)
	header := &tar.Header{
		Name:     t.fileName,
		Mode:     0o644,
		Size:     int64(t.buf.Len()),
		ModTime:  time.Now(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if _, err := tw.Write(t.buf.Bytes()); err != nil {
		return err
	}
	return tw.Close()
}
