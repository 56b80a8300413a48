package beats

import "logup/internal/global"

// Subset of the lumberjack client used by the module
type sender interface {
	Send(data []interface{}) (int, error)
	Close() error
}

type OutModule struct {
	Namespace []string
	sink      sender
}

// Constant metadata attached to every event
var agentFields = map[string]interface{}{
	"program": global.ProgBaseName,
	"version": global.ProgVersion,
	"type":    "filebeat",
}
