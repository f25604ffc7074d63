package ingest

import (
	"bytes"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText converts uploaded bytes to a UTF-8 string. A byte order
// mark selects the encoding when present; BOM-less content containing
// NUL bytes is taken as UTF-16LE, which meeting platforms commonly
// export on Windows. Invalid sequences decode to the replacement rune
// instead of failing the upload.
func decodeText(raw []byte) string {
	var fallback encoding.Encoding = unicode.UTF8
	if bytes.IndexByte(raw, 0x00) >= 0 {
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(fallback.NewDecoder())))
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
