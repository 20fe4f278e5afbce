package docstore

import (
	"context"
	"fmt"
)

type OrderInput struct {
	CustomerID string
	DealerID   string
	Product    string
	Quantity   int
	Amount     float64
	Notes      string
}

// CreateOrder appends a new pending order with a seeded timeline and
// notifies the admin role.
func (s *Store) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	now := isoTime(s.now())
	order := Order{
		ID:         newID("ORD"),
		CustomerID: in.CustomerID,
		DealerID:   in.DealerID,
		Product:    in.Product,
		Quantity:   in.Quantity,
		Amount:     in.Amount,
		Notes:      in.Notes,
		Status:     "pending",
		CreatedAt:  now,
		Timeline: []TimelineEvent{
			{Status: "order_placed", Date: now, Note: "Order placed successfully"},
		},
	}

	err := mutateDoc(ctx, s, CollectionOrders, "create_order", func(doc *ordersDoc) (bool, error) {
		doc.Orders = append(doc.Orders, order)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = s.CreateNotification(ctx, NotificationInput{
		Recipient: AdminRecipient,
		Type:      "new_order",
		Message:   fmt.Sprintf("New order #%s received", order.ID),
		Data:      &NotificationData{OrderID: order.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order notification: %w", err)
	}

	return &order, nil
}

// UpdateOrderStatus transitions an order to the given status,
// appending a timeline event, and notifies the order's customer.
// Returns nil when the order id is unknown; nothing is written then.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status, note string) (*Order, error) {
	var updated *Order
	err := mutateDoc(ctx, s, CollectionOrders, "update_order_status", func(doc *ordersDoc) (bool, error) {
		updated = nil
		for i := range doc.Orders {
			o := &doc.Orders[i]
			if o.ID != orderID {
				continue
			}
			now := isoTime(s.now())
			o.Status = status
			o.Timeline = append(o.Timeline, TimelineEvent{Status: status, Date: now, Note: note})
			o.UpdatedAt = now
			copied := *o
			updated = &copied
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	_, err = s.CreateNotification(ctx, NotificationInput{
		Recipient: UserRecipient(updated.CustomerID),
		Type:      "order_update",
		Message:   fmt.Sprintf("Order #%s status updated to %s", orderID, status),
		Data:      &NotificationData{OrderID: orderID, Status: status},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create status notification: %w", err)
	}

	return updated, nil
}

// CustomerOrders lists the orders belonging to a customer id.
func (s *Store) CustomerOrders(ctx context.Context, customerID string) ([]Order, error) {
	doc, _, err := readDoc[ordersDoc](ctx, s, CollectionOrders, "customer_orders")
	if err != nil {
		return nil, err
	}

	var orders []Order
	for _, o := range doc.Orders {
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// DealerOrders lists the orders assigned to a dealer id.
func (s *Store) DealerOrders(ctx context.Context, dealerID string) ([]Order, error) {
	doc, _, err := readDoc[ordersDoc](ctx, s, CollectionOrders, "dealer_orders")
	if err != nil {
		return nil, err
	}

	var orders []Order
	for _, o := range doc.Orders {
		if o.DealerID == dealerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// AllOrders returns every order in storage order.
func (s *Store) AllOrders(ctx context.Context) ([]Order, error) {
	doc, _, err := readDoc[ordersDoc](ctx, s, CollectionOrders, "all_orders")
	if err != nil {
		return nil, err
	}
	return doc.Orders, nil
}
