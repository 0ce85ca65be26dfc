package hwbridge

// MessageHandler receives a message. Returned errors are logged.
type MessageHandler func(topic string, payload []byte) error

// Transport is a publish/subscribe message channel.
type Transport interface {
	// Publish sends payload on topic.
	Publish(topic string, payload []byte) error

	// Subscribe registers handler for messages on topic. Handlers may run
	// concurrently.
	Subscribe(topic string, handler MessageHandler) error

	// Close disconnects the transport.
	Close() error
}
