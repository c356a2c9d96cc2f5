package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"minicasino/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// DefaultSubjectPrefix is used when no prefix is configured
const DefaultSubjectPrefix = "minicasino.events"

// MessagePublisher is the subset of *nats.Conn the forwarder needs
type MessagePublisher interface {
	Publish(subject string, data []byte) error
}

// EventEnvelope wraps every forwarded event
type EventEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards committed domain events to NATS subjects
type NATSEventPublisher struct {
	conn   MessagePublisher
	prefix string
	now    func() time.Time
}

// NewNATSEventPublisher creates a forwarder publishing under prefix
func NewNATSEventPublisher(conn MessagePublisher, prefix string) *NATSEventPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSEventPublisher{
		conn:   conn,
		prefix: prefix,
		now:    time.Now,
	}
}

// ConnectNATS dials the server with reconnect handling
func ConnectNATS(servers string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("minicasino"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			fields := log.Fields{"error": err}
			if sub != nil {
				fields["subject"] = sub.Subject
			}
			log.WithFields(fields).Error("NATS async error")
		}),
	}

	nc, err := nats.Connect(servers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("servers", servers).Info("Connected to NATS")
	return nc, nil
}

// Subject returns the subject an event type is published on
func (p *NATSEventPublisher) Subject(eventType events.EventType) string {
	return p.prefix + "." + string(eventType)
}

// Subscribe registers the forwarder for every event type on the bus
func (p *NATSEventPublisher) Subscribe(bus *events.Bus) {
	for _, eventType := range events.AllEventTypes {
		bus.Subscribe(eventType, p.handle)
	}
}

func (p *NATSEventPublisher) handle(ctx context.Context, event events.Event) {
	if err := p.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// Publish wraps the event in an envelope and sends it
func (p *NATSEventPublisher) Publish(event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:   uuid.New().String(),
		EventType: string(event.Type()),
		Timestamp: p.now().UTC(),
		Payload:   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := p.Subject(event.Type())
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}
