// Local echo of every record to the process standard output
package stdout

import (
	"context"
	"fmt"
	"io"
	"logup/internal/global"
	"os"
	"time"
)

type OutModule struct {
	Namespace []string
	sink      io.Writer
}

// Creates echo module writing to os.Stdout
func NewOutput(namespace []string) (module *OutModule) {
	module = NewOutputTo(namespace, os.Stdout)
	return
}

// Creates echo module writing to sink
func NewOutputTo(namespace []string, sink io.Writer) (module *OutModule) {
	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoStdout),
		sink:      sink,
	}
	return
}

// Writes the payload bytes verbatim, unbuffered. Timestamp is ignored.
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	data := payload
	for len(data) > 0 {
		var n int
		n, err = mod.sink.Write(data)
		if err == nil && n == 0 {
			err = io.ErrShortWrite
		}
		if err != nil {
			err = fmt.Errorf("failed echoing record to standard output: %w", err)
			return
		}
		data = data[n:] // remove the bytes that were successfully written
	}
	return
}

// Nothing to release, standard output stays open
func (mod *OutModule) Shutdown() (err error) {
	return
}
