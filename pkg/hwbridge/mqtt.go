package hwbridge

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultConnectTimeout    = 10 * time.Second
	defaultPublishTimeout    = 5 * time.Second
	defaultDisconnectQuiesce = 500 // milliseconds
	defaultKeepAlive         = 30 * time.Second
	maxQoS                   = 2
	maxPayloadSize           = 1 << 20
)

// MQTTConfig configures an MQTTTransport.
type MQTTConfig struct {
	Host     string
	Port     int
	TLS      bool
	ClientID string
	Username string
	Password string
	QoS      byte

	// Reconnect backoff bounds.
	ReconnectInitial time.Duration
	ReconnectMax     time.Duration

	// Logger for handler errors and connection changes (optional).
	Logger *slog.Logger
}

// DefaultMQTTConfig returns settings for a local broker.
func DefaultMQTTConfig() MQTTConfig {
	return MQTTConfig{
		Host:             "127.0.0.1",
		Port:             1883,
		ClientID:         "vhal-broker",
		QoS:              1,
		ReconnectInitial: time.Second,
		ReconnectMax:     30 * time.Second,
	}
}

// MQTTTransport is a Transport over an MQTT broker. Subscriptions are
// restored after a reconnect.
type MQTTTransport struct {
	client pahomqtt.Client
	cfg    MQTTConfig

	subMu         sync.RWMutex
	subscriptions map[string]MessageHandler
}

// DialMQTT connects to the MQTT broker described by cfg.
func DialMQTT(cfg MQTTConfig) (*MQTTTransport, error) {
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}
	t := &MQTTTransport{
		cfg:           cfg,
		subscriptions: make(map[string]MessageHandler),
	}

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		t.restoreSubscriptions()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		t.warn("mqtt connection lost", "error", err)
	})

	t.client = pahomqtt.NewClient(opts)
	token := t.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectFailed, err)
	}
	return t, nil
}

func buildClientOptions(cfg MQTTConfig) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	if cfg.ReconnectInitial > 0 {
		opts.SetConnectRetryInterval(cfg.ReconnectInitial)
	}
	if cfg.ReconnectMax > 0 {
		opts.SetMaxReconnectInterval(cfg.ReconnectMax)
	}
	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)
	opts.SetOrderMatters(false)
	return opts
}

// Publish sends payload on topic and waits for the broker to accept it.
func (t *MQTTTransport) Publish(topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrPayloadTooLarge, len(payload), maxPayloadSize)
	}
	if !t.client.IsConnected() {
		return ErrNotConnected
	}

	token := t.client.Publish(topic, t.cfg.QoS, false, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// Subscribe registers handler for topic.
func (t *MQTTTransport) Subscribe(topic string, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}
	if !t.client.IsConnected() {
		return ErrNotConnected
	}

	t.subMu.Lock()
	t.subscriptions[topic] = handler
	t.subMu.Unlock()

	token := t.client.Subscribe(topic, t.cfg.QoS, t.wrapHandler(handler))
	var err error
	if !token.WaitTimeout(defaultPublishTimeout) {
		err = fmt.Errorf("timeout after %v", defaultPublishTimeout)
	} else {
		err = token.Error()
	}
	if err != nil {
		t.subMu.Lock()
		delete(t.subscriptions, topic)
		t.subMu.Unlock()
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}

// Close disconnects from the broker.
func (t *MQTTTransport) Close() error {
	if t.client != nil {
		t.client.Disconnect(defaultDisconnectQuiesce)
	}
	return nil
}

// IsConnected reports whether the client is connected.
func (t *MQTTTransport) IsConnected() bool {
	return t.client != nil && t.client.IsConnected()
}

func (t *MQTTTransport) restoreSubscriptions() {
	t.subMu.RLock()
	defer t.subMu.RUnlock()
	for topic, handler := range t.subscriptions {
		t.client.Subscribe(topic, t.cfg.QoS, t.wrapHandler(handler))
	}
}

// wrapHandler adds panic recovery and error logging to handler.
func (t *MQTTTransport) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				t.warn("mqtt handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			t.warn("mqtt handler returned error", "topic", msg.Topic(), "error", err)
		}
	}
}

func (t *MQTTTransport) warn(msg string, args ...any) {
	if t.cfg.Logger != nil {
		t.cfg.Logger.Warn(msg, args...)
	}
}

var _ Transport = (*MQTTTransport)(nil)
