package order

// groupKey picks the group a view row belongs to.
type groupKey func(viewRow) int64

func byOrderID(r viewRow) int64 { return r.OrderID }

// oneGroup puts every row in the same group, for queries already filtered to
// a single order.
func oneGroup(viewRow) int64 { return 0 }

// foldViews folds flat join rows into nested views. The first row of a group
// supplies the customer and order headers, every row appends one line item,
// and groups are emitted in the order their key was first seen.
func foldViews(rows []viewRow, key groupKey) []OrderView {
	views := []OrderView{}
	index := make(map[int64]int)

	for _, row := range rows {
		k := key(row)
		i, ok := index[k]
		if !ok {
			i = len(views)
			index[k] = i
			views = append(views, OrderView{
				CustomerDetail: row.Customer,
				OrderDetail: OrderDetail{
					InvoiceNumber: row.OrderNumber,
					InvoiceDate:   row.OrderDate,
					CustomerID:    row.Customer.CustomerID,
				},
				LineItems: []LineItemView{},
			})
		}
		views[i].LineItems = append(views[i].LineItems, lineItemView(row))
	}
	return views
}

func lineItemView(row viewRow) LineItemView {
	return LineItemView{
		LineItemID:  row.LineItemID,
		ProductID:   row.ProductID,
		Quantity:    row.Quantity,
		InvoiceDate: row.OrderDate,
		ProductName: row.ProductName,
		ProductCost: FormatMoney(row.ProductCost),
		TotalCost:   FormatMoney(LineTotal(row.ProductCost, row.Quantity)),
	}
}
