package global

import (
	"os"
	"strings"
	"sync"
)

var (
	CmdOpts  *CommandSet // Holds CLI command definition
	Hostname string      // local machine name
	PID      int         // self

	// Integer for printing increasingly detailed information as program progresses
	//
	//	0 - None: quiet (prints nothing but errors)
	//	1 - Standard: normal progress messages
	//	2 - Progress: more progress messages (no actual data outputted)
	//	3 - Data: shows limited data being processed
	//	4 - FullData: shows full data being processed
	//	5 - Debug: shows extra data during processing (raw bytes)
	Verbosity int

	bootID     string
	bootIDOnce sync.Once
)

// Kernel boot identifier in journal notation (32 hex chars, no dashes). Empty if unavailable.
func BootID() string {
	bootIDOnce.Do(func() {
		raw, err := os.ReadFile("/proc/sys/kernel/random/boot_id")
		if err != nil {
			return
		}
		bootID = strings.ReplaceAll(strings.TrimSpace(string(raw)), "-", "")
	})
	return bootID
}
