package order

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// CreateRequest is the wire body of POST /api/order/new.
type CreateRequest struct {
	InvoiceData *InvoiceData  `json:"invoiceData"`
	Products    []ProductLine `json:"products"`
}

type InvoiceData struct {
	CustomerID json.Number `json:"customerId"`
}

type ProductLine struct {
	ProductID json.Number     `json:"productId"`
	Quantity  json.RawMessage `json:"quantity"`
}

// NewOrder converts the wire body into a NewOrder, rejecting anything the
// writer would refuse.
func (r CreateRequest) NewOrder() (NewOrder, error) {
	if r.InvoiceData == nil {
		return NewOrder{}, invalidInput("missing invoiceData")
	}
	if len(r.Products) == 0 {
		return NewOrder{}, invalidInput("products must be a non-empty array")
	}

	customerID, ok := parseID(r.InvoiceData.CustomerID)
	if !ok {
		return NewOrder{}, invalidInput(fmt.Sprintf("invalid customerId %q", r.InvoiceData.CustomerID))
	}

	o := NewOrder{
		CustomerID: customerID,
		Items:      make([]NewLineItem, 0, len(r.Products)),
	}
	for i, p := range r.Products {
		productID, ok := parseID(p.ProductID)
		if !ok {
			return NewOrder{}, invalidProduct(fmt.Sprintf("products[%d]: invalid productId %q", i, p.ProductID))
		}
		quantity, ok := parseQuantity(p.Quantity)
		if !ok {
			return NewOrder{}, invalidProduct(fmt.Sprintf("products[%d]: invalid quantity %q", i, p.Quantity))
		}
		o.Items = append(o.Items, NewLineItem{ProductID: productID, Quantity: quantity})
	}

	if err := o.Validate(); err != nil {
		return NewOrder{}, err
	}
	return o, nil
}

// Validate enforces the creation invariants: a customer, at least one item,
// positive quantities and one item per distinct product.
func (o NewOrder) Validate() error {
	if o.CustomerID <= 0 {
		return invalidInput("customerId is required")
	}
	if len(o.Items) == 0 {
		return invalidInput("at least one product is required")
	}

	seen := make(map[int64]struct{}, len(o.Items))
	for i, it := range o.Items {
		if it.ProductID <= 0 {
			return invalidProduct(fmt.Sprintf("items[%d]: productId is required", i))
		}
		if it.Quantity < 1 {
			return invalidProduct(fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
		if _, dup := seen[it.ProductID]; dup {
			return invalidProduct(fmt.Sprintf("items[%d]: duplicate productId %d", i, it.ProductID))
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func parseID(n json.Number) (int64, bool) {
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// maxQuantityLen bounds the raw quantity token. Any valid quantity fits well
// inside it.
const maxQuantityLen = 24

// parseQuantity accepts any integral JSON number, so 2.0 is 2 while 2.5, "2"
// and null are rejected. Tokens are length-capped and parsed as float64 so
// the cost does not grow with the exponent.
func parseQuantity(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || len(raw) > maxQuantityLen || raw[0] == '"' {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	if f < 1 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
