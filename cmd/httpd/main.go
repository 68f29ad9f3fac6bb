// Command httpd runs the embedded HTTP/1.x server core against a YAML
// configuration file, wiring the zap-backed logger and the Prometheus
// metrics registry into the engine.Service it builds.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sunfirefox/http/engine"
	"github.com/sunfirefox/http/internal/config"
	"github.com/sunfirefox/http/internal/metrics"
	"github.com/sunfirefox/http/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "httpd.yaml", "path to the YAML configuration file")
	logLevel := flag.String("log-level", "info", "logger level: info or debug")
	flag.Parse()

	logger, err := telemetry.New(telemetry.Config{Sign: "zap", Level: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, "httpd: building logger:", err)
		os.Exit(1)
	}
	defer logger.Close()

	doc, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("loading configuration: %v", err)
		os.Exit(1)
	}

	registry := metrics.NewRegistry()
	svc := engine.NewService(logger, registry)

	if err := doc.Build(svc, nil); err != nil {
		logger.Errorf("building service from configuration: %v", err)
		os.Exit(1)
	}

	logger.Infof("starting %d endpoint(s)", len(svc.Endpoints()))
	if err := svc.Serve(); err != nil {
		logger.Errorf("serve: %v", err)
		os.Exit(1)
	}
}
