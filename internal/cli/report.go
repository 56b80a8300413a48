package cli

import (
	"errors"
	"fmt"
	"io"
)

// Prints err with its full causal chain, outermost first
func ReportError(out io.Writer, err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(out, "[ERROR] %v\n", err)
	causes := causeChain(err)
	if len(causes) == 0 {
		return
	}
	fmt.Fprintln(out, "Caused by:")
	for index, cause := range causes {
		fmt.Fprintf(out, "  %d: %v\n", index, cause)
	}
}

// Every error reachable by unwrapping, depth first
func causeChain(err error) (causes []error) {
	switch wrapped := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range wrapped.Unwrap() {
			causes = append(causes, inner)
			causes = append(causes, causeChain(inner)...)
		}
	default:
		inner := errors.Unwrap(err)
		if inner != nil {
			causes = append(causes, inner)
			causes = append(causes, causeChain(inner)...)
		}
	}
	return
}
