// Package events publishes detection lifecycle events for downstream
// consumers (dashboards, crew dispatch). Publishing is fire-and-forget:
// a broker problem never fails the request that produced the event.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/roadsense/roadsense-backend-go/internal/models"
)

// Event types
const (
	TypeRecordCreated = "detection.created"
	TypeStatusChanged = "detection.status_changed"
	TypeRecordDeleted = "detection.deleted"
)

// Event is the wire shape published to the detections topic
type Event struct {
	Type       string    `json:"type"`
	RecordID   string    `json:"record_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Status     string    `json:"status,omitempty"`
	Severity   string    `json:"severity,omitempty"`
	Priority   int       `json:"priority,omitempty"`
	Area       *string   `json:"area,omitempty"`
}

// Publisher emits detection lifecycle events
type Publisher interface {
	RecordCreated(record *models.DetectionRecord)
	StatusChanged(id, status string)
	RecordDeleted(id string)
	Close()
}

// NoopPublisher is used when no brokers are configured
type NoopPublisher struct{}

func (NoopPublisher) RecordCreated(*models.DetectionRecord) {}
func (NoopPublisher) StatusChanged(string, string)          {}
func (NoopPublisher) RecordDeleted(string)                  {}
func (NoopPublisher) Close()                                {}

// KafkaPublisher publishes events to a Kafka topic, keyed by record id
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher connects to the given brokers and starts a delivery
// report drain
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"linger.ms":         50,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	p := &KafkaPublisher{producer: producer, topic: topic}

	// Delivery failures are logged, never surfaced to request paths
	go func() {
		for e := range producer.Events() {
			if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
				log.Printf("[Events] delivery failed for key %s: %v", string(m.Key), m.TopicPartition.Error)
			}
		}
	}()

	return p, nil
}

func (p *KafkaPublisher) publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Events] failed to marshal %s event: %v", event.Type, err)
		return
	}

	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.RecordID),
		Value:          payload,
	}, nil)
	if err != nil {
		log.Printf("[Events] failed to enqueue %s event: %v", event.Type, err)
	}
}

// RecordCreated publishes a detection.created event
func (p *KafkaPublisher) RecordCreated(record *models.DetectionRecord) {
	p.publish(Event{
		Type:       TypeRecordCreated,
		RecordID:   record.ID,
		OccurredAt: record.CreatedAt,
		Status:     record.Status,
		Severity:   record.Severity,
		Priority:   record.PriorityScore,
		Area:       record.Area,
	})
}

// StatusChanged publishes a detection.status_changed event
func (p *KafkaPublisher) StatusChanged(id, status string) {
	p.publish(Event{
		Type:       TypeStatusChanged,
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
		Status:     status,
	})
}

// RecordDeleted publishes a detection.deleted event
func (p *KafkaPublisher) RecordDeleted(id string) {
	p.publish(Event{
		Type:       TypeRecordDeleted,
		RecordID:   id,
		OccurredAt: time.Now().UTC(),
	})
}

// Close flushes pending messages and shuts the producer down
func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
