package file

import (
	"bufio"
	"fmt"
	"logup/internal/global"
	"os"
)

// Creates new file output module appending to filePath. Returns nil nil if no path.
func NewOutput(namespace []string, filePath string) (module *OutModule, err error) {
	if filePath == "" {
		return
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		err = fmt.Errorf("failed to open output file: %w", err)
		return
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoFile),
		sink:      file,
		buffer:    bufio.NewWriter(file),
	}
	return
}

// Gracefully stops module, flushing buffered lines first
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.buffer != nil {
		err = mod.buffer.Flush()
	}
	if mod.sink != nil {
		cerr := mod.sink.Close()
		if err == nil {
			err = cerr
		}
	}
	return
}
