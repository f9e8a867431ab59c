package core

// input.go prepares uploaded bytes before format detection and loading:
//
//   - Compressed uploads (.gz, .xz) are unwrapped, with the decompressed size
//     capped by a counting reader.
//   - Delimited text is normalized: UTF-8 BOM stripped, BOM-marked UTF-16
//     transcoded to UTF-8. Text without a BOM is passed through untouched so
//     the engine reports encoding problems itself.

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxDecompressedBytes caps the size of an unwrapped upload.
const DefaultMaxDecompressedBytes int64 = 2_000_000_000

// errDecompressedTooLarge is returned by cappedReader once the cap is passed.
var errDecompressedTooLarge = errors.New("decompressed size exceeds limit")

// cappedReader counts bytes read and fails once more than limit have passed.
type cappedReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64 // 0 means unlimited
}

// Read implements io.Reader.
func (r *cappedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w (%d bytes)", errDecompressedTooLarge, r.Limit)
	}
	return n, err
}

// compressionSuffixes maps a file suffix to its decompressor.
var compressionSuffixes = []struct {
	suffix string
	open   func(io.Reader) (io.Reader, error)
}{
	{".gz", func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }},
	{".xz", func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) }},
}

// unwrapCompressed decompresses data when fileName carries a compression
// suffix. It returns the inner bytes and the inner file name used for
// detection; other inputs are returned unchanged.
func unwrapCompressed(data []byte, fileName string, limit int64) ([]byte, string, error) {
	lower := strings.ToLower(fileName)
	for _, c := range compressionSuffixes {
		if !strings.HasSuffix(lower, c.suffix) {
			continue
		}
		inner := fileName[:len(fileName)-len(c.suffix)]

		r, err := c.open(bytes.NewReader(data))
		if err != nil {
			return nil, inner, engineLoadError("decompression", err)
		}
		out, err := io.ReadAll(&cappedReader{reader: r, Limit: limit})
		if err != nil {
			return nil, inner, engineLoadError("decompression", err)
		}
		return out, inner, nil
	}
	return data, fileName, nil
}

// innerName strips a compression suffix from fileName. ok reports whether
// one was present.
func innerName(fileName string) (name string, ok bool) {
	lower := strings.ToLower(fileName)
	for _, c := range compressionSuffixes {
		if strings.HasSuffix(lower, c.suffix) {
			return fileName[:len(fileName)-len(c.suffix)], true
		}
	}
	return fileName, false
}

// InnerFileName returns fileName without a .gz or .xz suffix.
func InnerFileName(fileName string) string {
	name, _ := innerName(fileName)
	return name
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// normalizeText strips a UTF-8 BOM and transcodes BOM-marked UTF-16 to UTF-8.
func normalizeText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, fmt.Errorf("transcode UTF-16: %w", err)
		}
		return out, nil
	default:
		return data, nil
	}
}
