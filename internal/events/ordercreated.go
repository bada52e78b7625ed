package events

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/order"
)

const (
	OrderCreatedEventName    = "OrderCreated"
	OrderCreatedEventVersion = 1
)

type OrderCreatedItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderCreatedPayload is the v1 payload.
type OrderCreatedPayload struct {
	OrderID     int64              `json:"orderId"`
	OrderNumber int64              `json:"orderNumber"`
	CustomerID  int64              `json:"customerId"`
	OrderDate   time.Time          `json:"orderDate"`
	Items       []OrderCreatedItem `json:"items"`
}

// OrderCreatedEnvelope is the enveloped event structure.
type OrderCreatedEnvelope = EventEnvelope[OrderCreatedPayload]

// BuildOrderCreatedEnvelope builds an enveloped OrderCreated event. Events
// are partitioned by order number.
func BuildOrderCreatedEnvelope(c *order.Created, meta EnvelopeMetadata) OrderCreatedEnvelope {
	if meta.CorrelationID == "" {
		meta.CorrelationID = uuid.NewString()
	}

	items := make([]OrderCreatedItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, OrderCreatedItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	return OrderCreatedEnvelope{
		EventName:     OrderCreatedEventName,
		EventVersion:  OrderCreatedEventVersion,
		EventID:       uuid.NewString(),
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		Producer:      serviceName,
		PartitionKey:  strconv.FormatInt(c.OrderNumber, 10),
		OccurredAt:    time.Now().UTC(),
		Payload: OrderCreatedPayload{
			OrderID:     c.OrderID,
			OrderNumber: c.OrderNumber,
			CustomerID:  c.CustomerID,
			OrderDate:   c.OrderDate,
			Items:       items,
		},
	}
}
