package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic carries the workflow audit stream consumed by the municipal
// compliance pipeline.
const Topic = "opptak.audit.workflow"

// KafkaPublisher fans audit events out to kafka. Events are keyed by
// application id so per-application ordering is preserved within a partition.
type KafkaPublisher struct {
	client *kgo.Client
}

// NewKafkaPublisher connects to the given brokers and ensures the audit topic
// exists. Topic creation is idempotent; already-exists is not an error.
func NewKafkaPublisher(ctx context.Context, brokers []string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 1, 1, nil, Topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", resp.Err)
	}
	return &KafkaPublisher{client: client}, nil
}

// Publish produces one event synchronously so the caller knows fan-out
// succeeded before moving on.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(newWireEvent(event))
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(event.ApplicationID.String()),
		Value: payload,
	}
	return p.client.ProduceSync(ctx, record).FirstErr()
}

// Close flushes and releases the kafka client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// wireEvent is the JSON shape on the topic. Kept separate from the domain
// Event so internal renames don't break consumers.
type wireEvent struct {
	Timestamp     string `json:"timestamp"`
	ApplicationID string `json:"application_id"`
	Action        string `json:"action"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	ActorID       string `json:"actor_id,omitempty"`
	ActorRole     string `json:"actor_role,omitempty"`
	Reason        string `json:"reason,omitempty"`
	ClientIP      string `json:"client_ip,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
}

func newWireEvent(e Event) wireEvent {
	w := wireEvent{
		Timestamp:     e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		ApplicationID: e.ApplicationID.String(),
		Action:        string(e.Action),
		From:          e.From,
		To:            e.To,
		ActorRole:     e.ActorRole.String(),
		Reason:        e.Reason,
		ClientIP:      e.ClientIP,
		UserAgent:     e.UserAgent,
	}
	if !e.ActorID.IsZero() {
		w.ActorID = e.ActorID.String()
	}
	return w
}
