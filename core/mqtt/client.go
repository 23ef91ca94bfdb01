package mqtt

// Publisher sends raw payloads to an MQTT topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Client is a Publisher that can also subscribe and be closed.
type Client interface {
	Publisher
	Subscribe(topic string, handler func(topic string, payload []byte)) error
	Disconnect()
}
