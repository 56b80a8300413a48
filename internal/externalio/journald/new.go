package journald

import (
	"bytes"
	"context"
	"fmt"
	"logup/internal/global"
	"net/http"
	"net/url"
	"time"
)

// Creates new journald-remote output module. Tests connection. Returns nil nil if no url.
func NewOutput(namespace []string, endpoint string, identifier string) (module *OutModule, err error) {
	if endpoint == "" {
		return
	}
	if identifier == "" {
		identifier = global.ProgBaseName
	}

	new := &OutModule{
		Namespace:  append(append([]string(nil), namespace...), global.NSoJrnl),
		identifier: identifier,
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		DisableKeepAlives:     false,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: -1, // Not supported by journal remote server
	}

	var baseURL *url.URL
	baseURL, err = url.Parse(endpoint)
	if err != nil {
		err = fmt.Errorf("invalid journald URL: %w", err)
		return
	}
	messagePublishPath := &url.URL{Path: "upload"} // Only path accepted by the remote server
	new.url = baseURL.ResolveReference(messagePublishPath).String()

	new.sink = &http.Client{
		Transport: transport,
		Timeout:   global.DefaultRequestTimeout,
	}

	testCtx, cancel := context.WithTimeout(context.Background(), global.DefaultDialTimeout)
	defer cancel()

	var req *http.Request
	req, err = http.NewRequestWithContext(testCtx, http.MethodPost, endpoint, bytes.NewReader(nil))
	if err != nil {
		err = fmt.Errorf("failed to create test HTTP connection to journald: %w", err)
		return
	}
	req.Header.Set("Content-Type", "application/vnd.fdo.journal")

	var resp *http.Response
	resp, err = new.sink.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to test HTTP connection to journald: %w", err)
		return
	}
	resp.Body.Close()

	module = new
	return
}
