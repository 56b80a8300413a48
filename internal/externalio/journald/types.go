package journald

import (
	"net/http"
)

type OutModule struct {
	Namespace  []string
	sink       *http.Client
	url        string
	identifier string // SYSLOG_IDENTIFIER of every entry
}

// One export format field, kept in insertion order
type field struct {
	key string
	val string
}
