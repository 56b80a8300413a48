// HTTP server exposing pipeline metrics to the local system
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"logup/internal/global"
	"logup/internal/logctx"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const helpPage = `<!DOCTYPE html>
<html>
<head><title>@@PROGRAM@@ metrics</title></head>
<body>
<h1>@@PROGRAM@@ metrics</h1>
<ul>
<li><a href="@@METRICS_PATH@@">@@METRICS_PATH@@</a> Prometheus text exposition</li>
<li><a href="@@DISCOVER_PATH@@">@@DISCOVER_PATH@@</a> JSON listing, filter with <code>@@DISCOVER_PATH@@Namespace/Prefix?name=&amp;unit=&amp;type=counter|gauge</code></li>
</ul>
<p>Listening on @@LISTEN_ADDR@@:@@LISTEN_PORT@@</p>
</body>
</html>
`

// Sets up HTTP listener configuration for metric scraping and discovery
func SetupListener(ctx context.Context, port int, gatherer prometheus.Gatherer, snapshot Snapshotter) (server *http.Server) {
	requestMultiplexer := http.NewServeMux()
	errorLog := log.New(httpLogWriter{ctx: ctx}, "", 0)

	// Replace variables in html with globals
	page := strings.NewReplacer(
		"@@PROGRAM@@", global.ProgBaseName,
		"@@METRICS_PATH@@", global.MetricsPath,
		"@@DISCOVER_PATH@@", global.DiscoveryPath,
		"@@LISTEN_ADDR@@", global.HTTPListenAddr,
		"@@LISTEN_PORT@@", strconv.Itoa(port),
	).Replace(helpPage)

	// Root help page
	requestMultiplexer.HandleFunc("/", func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if clientRequest.URL.Path != "/" {
			serverResponder.WriteHeader(http.StatusNotFound)
			return
		}

		serverResponder.Header().Set("Content-Type", "text/html; charset=utf-8")
		serverResponder.WriteHeader(http.StatusOK)
		serverResponder.Write([]byte(page))
	})

	// Prometheus scrapes
	promHandler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog:      errorLog,
		ErrorHandling: promhttp.ContinueOnError,
	})
	requestMultiplexer.HandleFunc(global.MetricsPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		promHandler.ServeHTTP(serverResponder, clientRequest)
	})

	// Metric discovery requests
	requestMultiplexer.HandleFunc(global.DiscoveryPath, func(serverResponder http.ResponseWriter, clientRequest *http.Request) {
		if clientRequest.Method != http.MethodGet {
			serverResponder.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handleDiscovery(ctx, snapshot, serverResponder, clientRequest)
	})

	// Server configuration
	server = &http.Server{
		Addr:         global.HTTPListenAddr + ":" + strconv.Itoa(port),
		Handler:      requestMultiplexer,
		ReadTimeout:  global.HTTPReadTimeout,
		WriteTimeout: global.HTTPWriteTimeout,
		IdleTimeout:  global.HTTPIdleTimeout,
		ErrorLog:     errorLog,
	}
	return
}

// Starts the metric HTTP server and waits for requests
func Start(ctx context.Context, server *http.Server) {
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Metric server starting on %s (http://%s%s)\n",
		server.Addr,
		server.Addr,
		global.MetricsPath,
	)
	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Metric server failed to start: %v\n", err)
	}
}

// Encodes JSON and sends as response body
func jResp(ctx context.Context, serverResponder http.ResponseWriter, content any) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(content); err != nil {
		serverResponder.WriteHeader(http.StatusInternalServerError)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "Failed marshaling metric results: %v\n", err)
		return
	}
	serverResponder.Header().Set("Content-Type", "application/json")
	serverResponder.WriteHeader(http.StatusOK)
	serverResponder.Write(buf.Bytes())
}

// Logs HTTP server errors to internal program buffer (via context logger)
func (logWriter httpLogWriter) Write(p []byte) (n int, err error) {
	n = len(p)
	if n == 0 {
		return
	}
	logctx.LogEvent(
		logWriter.ctx,
		global.VerbosityStandard,
		global.ErrorLog,
		"%s\n", strings.TrimSpace(string(p)),
	)
	return
}
