package mqtt

import (
	"fmt"
	"sync"
)

// Message is a publication captured by MockPublisher.
type Message struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// MockPublisher records publications in memory. Topics listed in FailTopics
// return an error.
type MockPublisher struct {
	Messages   []Message
	FailTopics map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailTopics: make(map[string]bool)}
}

// Publish records the message or returns an error if configured to fail.
func (m *MockPublisher) Publish(topic string, payload []byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTopics[topic] {
		return fmt.Errorf("publish failed")
	}
	m.Messages = append(m.Messages, Message{Topic: topic, Payload: payload, Retained: retained})
	return nil
}

// Topics returns the topics published so far, in order.
func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		out[i] = msg.Topic
	}
	return out
}
