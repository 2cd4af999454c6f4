package mqtt

// Publisher sends an already encoded payload to a broker topic.
type Publisher interface {
	// Publish delivers payload on topic. Retained messages are kept by the
	// broker for late subscribers.
	Publish(topic string, payload []byte, retained bool) error
}
