package docstore

import "context"

type PaymentInput struct {
	CustomerID string
	OrderID    string
	Amount     float64
	Method     string
}

// CreatePayment appends a new pending payment.
func (s *Store) CreatePayment(ctx context.Context, in PaymentInput) (*Payment, error) {
	payment := Payment{
		ID:         newID("PAY"),
		CustomerID: in.CustomerID,
		OrderID:    in.OrderID,
		Amount:     in.Amount,
		Method:     in.Method,
		Status:     "pending",
		CreatedAt:  isoTime(s.now()),
	}

	err := mutateDoc(ctx, s, CollectionPayments, "create_payment", func(doc *paymentsDoc) (bool, error) {
		doc.Payments = append(doc.Payments, payment)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdatePaymentStatus sets a payment's status and, when transactionID
// is non-empty, records it. Returns nil on an unknown payment id.
func (s *Store) UpdatePaymentStatus(ctx context.Context, paymentID, status, transactionID string) (*Payment, error) {
	var updated *Payment
	err := mutateDoc(ctx, s, CollectionPayments, "update_payment_status", func(doc *paymentsDoc) (bool, error) {
		updated = nil
		for i := range doc.Payments {
			p := &doc.Payments[i]
			if p.ID != paymentID {
				continue
			}
			p.Status = status
			if transactionID != "" {
				p.TransactionID = transactionID
			}
			p.UpdatedAt = isoTime(s.now())
			copied := *p
			updated = &copied
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CustomerPayments lists the payments belonging to a customer id.
func (s *Store) CustomerPayments(ctx context.Context, customerID string) ([]Payment, error) {
	doc, _, err := readDoc[paymentsDoc](ctx, s, CollectionPayments, "customer_payments")
	if err != nil {
		return nil, err
	}

	var payments []Payment
	for _, p := range doc.Payments {
		if p.CustomerID == customerID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// AllPayments returns every payment in storage order.
func (s *Store) AllPayments(ctx context.Context) ([]Payment, error) {
	doc, _, err := readDoc[paymentsDoc](ctx, s, CollectionPayments, "all_payments")
	if err != nil {
		return nil, err
	}
	return doc.Payments, nil
}
