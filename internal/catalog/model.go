package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Customer is passed through as stored. Nullable contact fields stay null.
type Customer struct {
	CustomerID           int64   `json:"customerId"`
	CustomerName         string  `json:"customerName"`
	CustomerAddress1     string  `json:"customerAddress1"`
	CustomerAddress2     *string `json:"customerAddress2"`
	CustomerCity         string  `json:"customerCity"`
	CustomerState        string  `json:"customerState"`
	CustomerPostalCode   string  `json:"customerPostalCode"`
	CustomerTelephone    *string `json:"customerTelephone"`
	CustomerContactName  *string `json:"customerContactName"`
	CustomerEmailAddress *string `json:"customerEmailAddress"`
}

// ScanDest returns the scan targets in CustomerColumns order.
func (c *Customer) ScanDest() []any {
	return []any{
		&c.CustomerID,
		&c.CustomerName,
		&c.CustomerAddress1,
		&c.CustomerAddress2,
		&c.CustomerCity,
		&c.CustomerState,
		&c.CustomerPostalCode,
		&c.CustomerTelephone,
		&c.CustomerContactName,
		&c.CustomerEmailAddress,
	}
}

type Product struct {
	ProductID   int64
	ProductName string
	ProductCost decimal.Decimal
}

// MarshalJSON emits productCost as a JSON number carrying the exact decimal text.
func (p Product) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ProductID   int64       `json:"productId"`
		ProductName string      `json:"productName"`
		ProductCost json.Number `json:"productCost"`
	}{
		ProductID:   p.ProductID,
		ProductName: p.ProductName,
		ProductCost: json.Number(p.ProductCost.String()),
	})
}
