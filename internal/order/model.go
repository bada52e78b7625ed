package order

import (
	"time"

	"github.com/andreasstove999/ecommerce-system/invoice-service-go/internal/catalog"
)

// NewLineItem is one (product, quantity) entry of a creation request.
type NewLineItem struct {
	ProductID int64
	Quantity  int
}

// NewOrder is a validated-shape creation request.
type NewOrder struct {
	CustomerID int64
	Items      []NewLineItem
}

// Created is the outcome of a committed order write.
type Created struct {
	OrderID     int64
	OrderNumber int64
	OrderDate   time.Time
	CustomerID  int64
	Items       []NewLineItem
}

// Summary is one row of the order header listing.
type Summary struct {
	OrderNumber int64     `json:"orderNumber"`
	OrderDate   time.Time `json:"orderDate"`
	CustomerID  int64     `json:"customerId"`
}

type OrderDetail struct {
	InvoiceNumber int64     `json:"invoiceNumber"`
	InvoiceDate   time.Time `json:"invoiceDate"`
	CustomerID    int64     `json:"customerId"`
}

type LineItemView struct {
	LineItemID  int64     `json:"lineItemId"`
	ProductID   int64     `json:"productId"`
	Quantity    int       `json:"quantity"`
	InvoiceDate time.Time `json:"invoiceDate"`
	ProductName string    `json:"productName"`
	ProductCost string    `json:"productCost"`
	TotalCost   string    `json:"totalCost"`
}

// OrderView is the nested read model of one order, its customer and its line
// items. It is rebuilt from the store on every read.
type OrderView struct {
	CustomerDetail catalog.Customer `json:"customerDetail"`
	OrderDetail    OrderDetail      `json:"orderDetail"`
	LineItems      []LineItemView   `json:"lineItems"`
}
