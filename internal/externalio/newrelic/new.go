// Sends records to the New Relic Log API
package newrelic

import (
	"fmt"
	"logup/internal/global"
	"net/http"
	"strings"
	"time"
)

// Log API endpoints per account region
var regionEndpoints = map[string]string{
	"US": "https://log-api.newrelic.com/log/v1",
	"EU": "https://log-api.eu.newrelic.com/log/v1",
}

type OutModule struct {
	Namespace []string
	sink      *http.Client
	endpoint  string
	apiKey    string
}

// Creates new New Relic output module for region (US or EU). Returns nil nil if no region and key.
func NewOutput(namespace []string, region string, apiKey string) (module *OutModule, err error) {
	if region == "" && apiKey == "" {
		return
	}

	endpoint, ok := regionEndpoints[strings.ToUpper(region)]
	if !ok {
		err = fmt.Errorf("invalid New Relic region '%s' (expected US or EU)", region)
		return
	}
	if apiKey == "" {
		err = fmt.Errorf("New Relic API key is required")
		return
	}

	module = newOutput(namespace, endpoint, apiKey)
	return
}

func newOutput(namespace []string, endpoint string, apiKey string) (module *OutModule) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoNR),
		sink: &http.Client{
			Transport: transport,
			Timeout:   global.DefaultRequestTimeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
	return
}

// Gracefully stops module (err always nil)
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.sink != nil {
		mod.sink.CloseIdleConnections()
	}
	return
}
