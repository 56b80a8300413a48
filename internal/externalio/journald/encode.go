package journald

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// Serializes fields as one journal export format entry.
// Values containing a newline use the binary length-prefixed form. Empty values are omitted, except MESSAGE.
// https://systemd.io/JOURNAL_EXPORT_FORMATS/#journal-export-format
func encodeEntry(fields []field) (entry []byte) {
	var buf bytes.Buffer
	for _, field := range fields {
		if field.key == "" || (field.val == "" && field.key != "MESSAGE") {
			continue
		}

		buf.WriteString(field.key)
		if strings.IndexByte(field.val, '\n') < 0 {
			buf.WriteByte('=')
			buf.WriteString(field.val)
			buf.WriteByte('\n')
			continue
		}

		// Binary field: key, newline, 64 bit little endian length, data, newline
		buf.WriteByte('\n')
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], uint64(len(field.val)))
		buf.Write(size[:])
		buf.WriteString(field.val)
		buf.WriteByte('\n')
	}
	// Terminate with double newline
	buf.WriteByte('\n')

	entry = buf.Bytes()
	return
}
