package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/aymanezz/bazarly-backend/pkg/config"
	"github.com/aymanezz/bazarly-backend/pkg/db/models"
	"github.com/aymanezz/bazarly-backend/pkg/enums"
	"github.com/aymanezz/bazarly-backend/pkg/logger"
	"github.com/aymanezz/bazarly-backend/pkg/outbox"
	"github.com/aymanezz/bazarly-backend/pkg/outbox/payloads"
	"github.com/aymanezz/bazarly-backend/pkg/outbox/registry"
)

func TestProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			{
				ID:            uuid.New(),
				EventType:     enums.OutboxEventRequestSubmitted,
				AggregateType: enums.OutboxAggregateRequest,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelopePayload(t),
			},
			{
				ID:            uuid.New(),
				EventType:     enums.OutboxEventRequestSubmitted,
				AggregateType: enums.OutboxAggregateRequest,
				AggregateID:   uuid.New(),
				Payload:       mustEnvelopePayload(t),
			},
		},
	}
	pub := &fakePublisher{
		results: []publishResult{
			fakePublishResult{err: errors.New("transient")},
			fakePublishResult{},
		},
	}
	resolved := &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "moderation-topic",
			AggregateType: enums.OutboxAggregateRequest,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    uuid.NewString(),
			OccurredAt: time.Now(),
		},
		Payload: &payloads.RequestSubmittedEvent{},
	}
	service := newTestService(t, repo, pub, &fakeRegistry{resolved: resolved})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestProcessBatchParksUnresolvableEvent(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.OutboxEventType("BOGUS"),
		AggregateType: enums.OutboxAggregateRequest,
		AggregateID:   uuid.New(),
		AttemptCount:  1,
		Payload:       mustEnvelopePayload(t),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	badRegistry := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("unsupported event type"))}
	service := newTestService(t, repo, &fakePublisher{}, badRegistry)
	service.maxAttempts = 3

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.published); got != 0 {
		t.Fatalf("parked event should not be published, got %d", got)
	}
	// the failure is recorded until the attempt budget is spent
	if got := len(repo.failed); got != 2 {
		t.Fatalf("expected 2 failure marks to exhaust attempts, got %d", got)
	}
}

func TestProcessBatchReportsIdleWhenEmpty(t *testing.T) {
	repo := &fakeRepo{}
	service := newTestService(t, repo, &fakePublisher{}, &fakeRegistry{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("empty batch should report idle")
	}
}

func TestPublishResolvedSetsMessageAttributes(t *testing.T) {
	pub := &fakePublisher{results: []publishResult{fakePublishResult{}}}
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.OutboxEventRequestDecided,
		AggregateType: enums.OutboxAggregateRequest,
		AggregateID:   uuid.New(),
		CreatedAt:     time.Now(),
		Payload:       mustEnvelopePayload(t),
	}
	resolved := &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "moderation-topic",
			AggregateType: enums.OutboxAggregateRequest,
		},
		Envelope: outbox.PayloadEnvelope{
			EventID:    uuid.NewString(),
			OccurredAt: time.Now(),
		},
		Payload: &payloads.RequestDecidedEvent{},
	}
	service := newTestService(t, &fakeRepo{}, pub, &fakeRegistry{resolved: resolved})

	if err := service.publishResolved(context.Background(), event, resolved); err != nil {
		t.Fatalf("publish resolved returned error: %v", err)
	}
	if len(pub.messages) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.messages))
	}
	attrs := pub.messages[0].Attributes
	if attrs["event_id"] != resolved.Envelope.EventID {
		t.Fatalf("unexpected event_id attribute: %q", attrs["event_id"])
	}
	if attrs["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected aggregate_id attribute: %q", attrs["aggregate_id"])
	}
	if attrs["event_type"] != string(enums.OutboxEventRequestDecided) {
		t.Fatalf("unexpected event_type attribute: %q", attrs["event_type"])
	}
}

func newTestService(t *testing.T, repo *fakeRepo, pub *fakePublisher, resolver registryResolver) *Service {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.MaxAttempts = 5
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard})
	service, err := NewService(ServiceParams{
		Config:           cfg,
		Logger:           logg,
		DB:               pingStub{},
		PubSub:           pubsubStub{},
		Repository:       repo,
		Registry:         resolver,
		PublisherFactory: func(string) publisher { return pub },
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return service
}

func mustEnvelopePayload(t *testing.T) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{"requestId":"` + uuid.NewString() + `"}`),
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("failed to marshal envelope: %v", err)
	}
	return raw
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublished(id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailed(id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resolved, nil
}

type fakePublisher struct {
	messages []*gcppubsub.Message
	results  []publishResult
}

func (f *fakePublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	f.messages = append(f.messages, msg)
	if len(f.results) == 0 {
		return fakePublishResult{}
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next
}

type fakePublishResult struct {
	err error
}

func (f fakePublishResult) Get(context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "server-id", nil
}

type pingStub struct{}

func (pingStub) Ping(context.Context) error { return nil }

type pubsubStub struct{}

func (pubsubStub) Ping(context.Context) error            { return nil }
func (pubsubStub) Publisher(string) *gcppubsub.Publisher { return nil }
