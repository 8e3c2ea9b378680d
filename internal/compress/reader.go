package compress

import (
	"errors"
	"io"
	"path"
	"strings"
)

// MaxArchiveSize is the default cap on an uploaded archive.
const MaxArchiveSize int64 = 32 << 20

var (
	ErrArchiveTooLarge = errors.New("archive exceeds size limit")
	ErrNoCSV           = errors.New("no CSV file in archive")
)

// isCSV reports whether an archive entry holds the import payload.
func isCSV(name string) bool {
	return strings.EqualFold(path.Ext(name), ".csv")
}

// cappedReader fails with ErrArchiveTooLarge once more than limit bytes
// have been read from r, rather than silently truncating like io.LimitReader.
type cappedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func capReader(r io.Reader, limit int64) *cappedReader {
	return &cappedReader{r: r, limit: limit}
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.read > c.limit {
		return 0, ErrArchiveTooLarge
	}
	// one byte past the limit is enough to tell a full archive from an oversized one
	if room := c.limit - c.read + 1; int64(len(p)) > room {
		p = p[:room]
	}
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		return 0, ErrArchiveTooLarge
	}
	return n, err
}
