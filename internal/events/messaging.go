package events

const (
	DefaultExchange        = "ecommerce.events"
	OrderCreatedRoutingKey = "order.created.v1"
	serviceName            = "invoice-service"
)

// declareEventsExchange declares the durable topic exchange events are
// published to.
func declareEventsExchange(ch channel, name string) error {
	return ch.ExchangeDeclare(
		name,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
