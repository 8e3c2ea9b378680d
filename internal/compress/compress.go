// Package compress wraps CSV payloads in ZIP or TAR archives.
package compress

import (
	"fmt"
	"io"
)

const (
	Zip = "zip"
	Tar = "tar"
)

// NewWriter returns a writer that archives its input as fileName.
func NewWriter(archiveType string, w io.Writer, fileName string) (io.WriteCloser, error) {
	switch archiveType {
	case Zip:
		return NewZipWriter(w, fileName)
	case Tar:
		return NewTarWriter(w, fileName), nil
	}
	return nil, fmt.Errorf("unsupported archive type %q", archiveType)
}

// NewReader returns a reader over the first CSV file found in the archive,
// reading at most limit bytes of r. It takes ownership of r.
func NewReader(archiveType string, r io.ReadCloser, limit int64) (io.ReadCloser, error) {
	switch archiveType {
	case Zip:
		return NewZipReader(r, limit)
	case Tar:
		return NewTarReader(r, limit)
	}
	r.Close()
	return nil, fmt.Errorf("unsupported archive type %q", archiveType)
}
