// Command vhal-broker runs the vehicle property broker.
//
// The broker serves clients from a property catalog and talks to the vehicle
// hardware either through a simulated in-process backend or over MQTT.
//
// Usage:
//
//	vhal-broker [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-catalog string     Property catalog path (default: built-in demo catalog)
//	-hardware string    Hardware backend: fake, mqtt
//	-timeout duration   Request timeout
//	-log-level string   Log level: debug, info, warn, error
//	-trace string       Write a CBOR trace of broker events to this file
//	-interactive        Start the interactive command shell
//	-simulate           Drive continuous properties with synthetic data (fake backend)
//
// Examples:
//
//	# Simulated hardware with an interactive shell
//	vhal-broker -interactive -simulate
//
//	# Hardware over MQTT with a trace file
//	vhal-broker -hardware mqtt -config /etc/vhal/broker.yaml -trace broker.cbor
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carprop/vhal-go/cmd/vhal-broker/interactive"
	"github.com/carprop/vhal-go/internal/config"
	"github.com/carprop/vhal-go/internal/logging"
	"github.com/carprop/vhal-go/pkg/broker"
	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/hwbridge"
	vlog "github.com/carprop/vhal-go/pkg/log"
)

var version = "dev"

// Flags holds the command line. Non-empty values override the configuration.
type Flags struct {
	ConfigFile  string
	CatalogPath string
	Hardware    string
	Timeout     time.Duration
	LogLevel    string
	TracePath   string
	Interactive bool
	Simulate    bool
}

var flags Flags

func init() {
	flag.StringVar(&flags.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flags.CatalogPath, "catalog", "", "Property catalog path (default: built-in demo catalog)")
	flag.StringVar(&flags.Hardware, "hardware", "", "Hardware backend: fake, mqtt")
	flag.DurationVar(&flags.Timeout, "timeout", 0, "Request timeout")
	flag.StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.TracePath, "trace", "", "Write a CBOR trace of broker events to this file")
	flag.BoolVar(&flags.Interactive, "interactive", false, "Start the interactive command shell")
	flag.BoolVar(&flags.Simulate, "simulate", false, "Drive continuous properties with synthetic data (fake backend)")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vhal-broker: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, version)
	if err := run(cfg, logger); err != nil {
		logger.Error("vhal-broker failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flags.ConfigFile != "" {
		cfg, err = config.Load(flags.ConfigFile)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	if flags.CatalogPath != "" {
		cfg.Catalog.Path = flags.CatalogPath
	}
	if flags.Hardware != "" {
		cfg.Hardware.Backend = flags.Hardware
	}
	if flags.Timeout != 0 {
		cfg.Broker.RequestTimeout = flags.Timeout
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
	if flags.TracePath != "" {
		cfg.Trace.Path = flags.TracePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadCatalog(path string) (*catalog.Memory, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", "properties", cat.Len(), "path", cfg.Catalog.Path)

	hw, fake, closeHW, err := openHardware(cfg, cat, logger)
	if err != nil {
		return err
	}
	defer closeHW()

	trace, closeTrace, err := openTrace(cfg.Trace.Path, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	b := broker.New(cat, hw, broker.Config{
		Timeout:       cfg.Broker.RequestTimeout,
		SweepInterval: cfg.Broker.SweepInterval,
		Logger:        logging.Component(logger, "broker"),
		Trace:         trace,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("start broker: %w", err)
	}
	defer b.Close()

	if flags.Simulate {
		if fake == nil {
			logger.Warn("simulation needs the fake hardware backend, ignoring -simulate")
		} else {
			go runSimulation(ctx, cat, fake)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if flags.Interactive {
		shell, err := interactive.New(b, cat, fake)
		if err != nil {
			return err
		}
		logger.Info("interactive shell started", "client", shell.ClientID())
		shell.Run(ctx, cancel)
	} else {
		logger.Info("broker running, press Ctrl+C to stop", "backend", cfg.Hardware.Backend)
		<-ctx.Done()
	}

	logger.Info("shutting down")
	return nil
}

// openHardware returns the hardware backend and, for the fake backend, the
// fake itself.
func openHardware(cfg *config.Config, cat *catalog.Memory, logger *slog.Logger) (hardware.Access, *hardware.Fake, func(), error) {
	switch cfg.Hardware.Backend {
	case config.BackendMQTT:
		transport, err := hwbridge.DialMQTT(hwbridge.MQTTConfig{
			Host:             cfg.MQTT.Broker.Host,
			Port:             cfg.MQTT.Broker.Port,
			TLS:              cfg.MQTT.Broker.TLS,
			ClientID:         cfg.MQTT.Broker.ClientID,
			Username:         cfg.MQTT.Auth.Username,
			Password:         cfg.MQTT.Auth.Password,
			QoS:              byte(cfg.MQTT.QoS),
			ReconnectInitial: cfg.MQTT.Reconnect.InitialDelay,
			ReconnectMax:     cfg.MQTT.Reconnect.MaxDelay,
			Logger:           logging.Component(logger, "mqtt"),
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect hardware bridge: %w", err)
		}
		bridge, err := hwbridge.NewBridge(transport, hwbridge.Config{
			Prefix:          cfg.MQTT.TopicPrefix,
			ResponseTimeout: cfg.MQTT.ResponseTimeout,
			Logger:          logging.Component(logger, "hwbridge"),
		})
		if err != nil {
			transport.Close()
			return nil, nil, nil, fmt.Errorf("start hardware bridge: %w", err)
		}
		logger.Info("hardware bridge connected",
			"host", cfg.MQTT.Broker.Host, "port", cfg.MQTT.Broker.Port, "prefix", cfg.MQTT.TopicPrefix)
		return bridge, nil, func() {
			bridge.Close()
			transport.Close()
		}, nil

	default:
		fake := hardware.NewFake(cat.InitialValues()...)
		fake.SetDelay(cfg.Hardware.FakeDelay)
		logger.Info("using simulated hardware", "delay", cfg.Hardware.FakeDelay)
		return fake, fake, fake.Wait, nil
	}
}

// openTrace returns the broker trace sink. With a path the trace goes to a
// CBOR file; debug logging mirrors it either way.
func openTrace(path string, logger *slog.Logger) (vlog.Logger, func(), error) {
	debug := vlog.NewSlogAdapter(logging.Component(logger, "trace"))
	if path == "" {
		return debug, func() {}, nil
	}

	file, err := vlog.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open trace file: %w", err)
	}
	logger.Info("tracing broker events", "path", path)
	return vlog.NewMultiLogger(file, debug), func() { closeQuietly(file, logger) }, nil
}

func closeQuietly(c io.Closer, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Warn("close failed", "error", err)
	}
}
