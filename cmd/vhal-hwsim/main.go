// Command vhal-hwsim serves simulated vehicle hardware over MQTT.
//
// It answers the request batches a vhal-broker started with -hardware mqtt
// publishes, and forwards value changes as hardware events. It reads the
// same configuration file as vhal-broker and uses its mqtt section.
//
// Usage:
//
//	vhal-hwsim [-config file] [-catalog file] [-delay duration] [-log-level level]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carprop/vhal-go/internal/config"
	"github.com/carprop/vhal-go/internal/logging"
	"github.com/carprop/vhal-go/pkg/catalog"
	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/hwbridge"
)

var version = "dev"

func main() {
	configFile := flag.String("config", "", "Configuration file path (YAML)")
	catalogPath := flag.String("catalog", "", "Property catalog providing initial values (default: built-in demo catalog)")
	delay := flag.Duration("delay", 0, "Delay every hardware response")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "vhal-hwsim: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	logger := logging.New(cfg.Logging, version)

	cat, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	fake := hardware.NewFake(cat.InitialValues()...)
	fake.SetDelay(*delay)

	transport, err := hwbridge.DialMQTT(hwbridge.MQTTConfig{
		Host:             cfg.MQTT.Broker.Host,
		Port:             cfg.MQTT.Broker.Port,
		TLS:              cfg.MQTT.Broker.TLS,
		ClientID:         cfg.MQTT.Broker.ClientID + "-hwsim",
		Username:         cfg.MQTT.Auth.Username,
		Password:         cfg.MQTT.Auth.Password,
		QoS:              byte(cfg.MQTT.QoS),
		ReconnectInitial: cfg.MQTT.Reconnect.InitialDelay,
		ReconnectMax:     cfg.MQTT.Reconnect.MaxDelay,
		Logger:           logging.Component(logger, "mqtt"),
	})
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer transport.Close()

	if _, err := hwbridge.NewResponder(transport, fake, hwbridge.Config{
		Prefix: cfg.MQTT.TopicPrefix,
		Logger: logging.Component(logger, "responder"),
	}); err != nil {
		logger.Error("failed to start responder", "error", err)
		os.Exit(1)
	}
	logger.Info("serving simulated hardware",
		"host", cfg.MQTT.Broker.Host, "port", cfg.MQTT.Broker.Port, "prefix", cfg.MQTT.TopicPrefix)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	// Let callbacks still in flight publish their responses.
	waitCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		fake.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-waitCtx.Done():
	}
}

func loadCatalog(path string) (*catalog.Memory, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
