// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Command natpunchd keeps a NAT mapping open towards a rendezvous peer and
// runs a script whenever the mapping changes or a connection request
// arrives.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/logging"
	"github.com/pion/natpunch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

var (
	configPath = flag.String("config", "", "TOML config file")                               //nolint:gochecknoglobals
	remote     = flag.String("remote", "", "rendezvous host")                                //nolint:gochecknoglobals
	remotePort = flag.Uint("remote-port", 0, "rendezvous port")                              //nolint:gochecknoglobals
	localPort  = flag.Uint("local-port", 0, "local UDP port, 0 for ephemeral")               //nolint:gochecknoglobals
	keepalive  = flag.Uint("keepalive", 0, "keepalive interval in seconds, 0 disables")      //nolint:gochecknoglobals
	script     = flag.String("script", "", "command run as '<script> <verb> <addr> <port>'") //nolint:gochecknoglobals
	restart    = flag.Uint("restart", 0, "restart delay in seconds, 0 exits on failure")     //nolint:gochecknoglobals
	logLevel   = flag.String("log-level", "", "trace, debug, info, warn, error, disabled")   //nolint:gochecknoglobals
	metrics    = flag.String("metrics", "", "serve prometheus metrics on this address")      //nolint:gochecknoglobals
)

const shutdownTimeout = 5 * time.Second

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "natpunchd:", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "natpunchd:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig() (natpunch.Config, error) {
	cfg := natpunch.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = natpunch.LoadConfig(*configPath); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "remote":
			cfg.RemoteAddr = *remote
		case "remote-port":
			cfg.RemotePort = uint16(*remotePort) //nolint:gosec // G115
		case "local-port":
			cfg.LocalPort = uint16(*localPort) //nolint:gosec // G115
		case "keepalive":
			cfg.KeepaliveInterval = uint32(*keepalive) //nolint:gosec // G115
		case "script":
			cfg.Script = *script
		case "restart":
			cfg.RestartInterval = uint32(*restart) //nolint:gosec // G115
		case "log-level":
			cfg.LogLevel = *logLevel
		case "metrics":
			cfg.MetricsAddr = *metrics
		}
	})

	return cfg, cfg.Validate()
}

func run(cfg natpunch.Config) (err error) {
	loggerFactory, err := cfg.LoggerFactory(os.Stderr)
	if err != nil {
		return err
	}
	log := loggerFactory.NewLogger("natpunchd")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []natpunch.Option{natpunch.WithLoggerFactory(loggerFactory)}

	if cfg.Script != "" {
		notifier := natpunch.NewScriptNotifier(cfg.Script, loggerFactory)
		defer notifier.Wait()
		opts = append(opts, natpunch.WithNotifier(notifier))
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		m, metricsErr := natpunch.NewMetrics(reg)
		if metricsErr != nil {
			return metricsErr
		}
		opts = append(opts, natpunch.WithMetrics(m))

		srv := serveMetrics(cfg.MetricsAddr, reg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	log.Infof("Starting, rendezvous %s", cfg.Remote())

	return natpunch.NewRunner(cfg.Params, opts...).Run(ctx)
}

func serveMetrics(addr string, reg *prometheus.Registry, log logging.LeveledLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server: %v", err)
		}
	}()
	log.Infof("Serving metrics on %s", addr)

	return srv
}
