package journald

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Reads one export format entry (terminated by an empty line) back into a field map
func decodeEntry(reader *bufio.Reader) (fields map[string]string, err error) {
	fields = make(map[string]string)
	for {
		var line string
		line, err = reader.ReadString('\n')
		if err != nil {
			err = fmt.Errorf("failed line read: %w", err)
			return
		}
		line = strings.TrimSuffix(line, "\n")

		if line == "" {
			return
		}

		// Text field
		if key, value, ok := strings.Cut(line, "="); ok {
			fields[key] = value
			continue
		}

		// Binary field: line is the key, followed by a little-endian length and the data
		lenField := make([]byte, 8)
		if _, err = io.ReadFull(reader, lenField); err != nil {
			err = fmt.Errorf("failed binary field length read: %w", err)
			return
		}
		data := make([]byte, binary.LittleEndian.Uint64(lenField))
		if _, err = io.ReadFull(reader, data); err != nil {
			err = fmt.Errorf("failed binary field value read: %w", err)
			return
		}
		if b, _ := reader.ReadByte(); b != '\n' {
			err = fmt.Errorf("binary field missing newline")
			return
		}
		fields[line] = string(data)
	}
}
