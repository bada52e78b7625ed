package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/order"
)

type declared struct {
	name, kind string
	durable    bool
}

type published struct {
	exchange, key string
	msg           amqp.Publishing
	hasDeadline   bool
}

type fakeChannel struct {
	declared   []declared
	published  []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp.Table) error {
	f.declared = append(f.declared, declared{name: name, kind: kind, durable: durable})
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	_, ok := ctx.Deadline()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg, hasDeadline: ok})
	return f.publishErr
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleCreated() *order.Created {
	return &order.Created{
		OrderID:     42,
		OrderNumber: 100001,
		OrderDate:   time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
		CustomerID:  10,
		Items: []order.NewLineItem{
			{ProductID: 1, Quantity: 2},
			{ProductID: 5, Quantity: 1},
		},
	}
}

func TestNewPublisher_DeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}

	p, err := newPublisher(ch, "")
	require.NoError(t, err)
	require.Len(t, ch.declared, 1)
	assert.Equal(t, declared{name: DefaultExchange, kind: "topic", durable: true}, ch.declared[0])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewPublisher_DeclareError(t *testing.T) {
	_, err := newPublisher(&fakeChannel{declareErr: errors.New("access refused")}, "custom.events")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declare custom.events")
}

func TestPublishOrderCreated(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, "custom.events")
	require.NoError(t, err)

	err = p.PublishOrderCreated(context.Background(), sampleCreated(), EnvelopeMetadata{CorrelationID: "req-1"})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "custom.events", got.exchange)
	assert.Equal(t, OrderCreatedRoutingKey, got.key)
	assert.True(t, got.hasDeadline)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var env OrderCreatedEnvelope
	require.NoError(t, json.Unmarshal(got.msg.Body, &env))
	require.NoError(t, env.Validate(OrderCreatedEventName, OrderCreatedEventVersion))
	assert.Equal(t, env.EventID, got.msg.MessageId)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(got.msg.Body, &fields))
	assert.ElementsMatch(t, []string{
		"eventName", "eventVersion", "eventId", "correlationId",
		"producer", "partitionKey", "occurredAt", "payload",
	}, keys(fields))
	assert.Equal(t, "req-1", env.CorrelationID)
	assert.Equal(t, "100001", env.PartitionKey)
	assert.Equal(t, int64(42), env.Payload.OrderID)
	assert.Equal(t, []OrderCreatedItem{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}}, env.Payload.Items)
}

func TestPublishOrderCreated_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: amqp.ErrClosed}
	p, err := newPublisher(ch, "")
	require.NoError(t, err)

	err = p.PublishOrderCreated(context.Background(), sampleCreated(), EnvelopeMetadata{})
	require.ErrorIs(t, err, amqp.ErrClosed)
}

func TestBuildOrderCreatedEnvelope(t *testing.T) {
	c := sampleCreated()

	env := BuildOrderCreatedEnvelope(c, EnvelopeMetadata{})
	require.NoError(t, env.Validate(OrderCreatedEventName, OrderCreatedEventVersion))
	assert.NotEmpty(t, env.CorrelationID)
	assert.Equal(t, serviceName, env.Producer)
	assert.True(t, c.OrderDate.Equal(env.Payload.OrderDate))
	assert.Equal(t, int64(10), env.Payload.CustomerID)

	other := BuildOrderCreatedEnvelope(c, EnvelopeMetadata{})
	assert.NotEqual(t, env.EventID, other.EventID)
}

func TestEnvelopeValidate(t *testing.T) {
	env := BuildOrderCreatedEnvelope(sampleCreated(), EnvelopeMetadata{})

	require.Error(t, env.Validate("OrderCompleted", OrderCreatedEventVersion))
	require.Error(t, env.Validate(OrderCreatedEventName, 2))

	env.PartitionKey = ""
	require.EqualError(t, env.Validate(OrderCreatedEventName, OrderCreatedEventVersion), "missing partitionKey")
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	require.NoError(t, p.PublishOrderCreated(context.Background(), sampleCreated(), EnvelopeMetadata{}))
	require.NoError(t, p.Close())
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
