package file

import (
	"bufio"
	"io"
)

type OutModule struct {
	Namespace []string
	sink      io.WriteCloser
	buffer    *bufio.Writer
}
