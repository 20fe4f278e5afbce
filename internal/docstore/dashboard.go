package docstore

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DashboardStats aggregates across the users, orders and payments
// collections.
type DashboardStats struct {
	TotalCustomers int     `json:"totalCustomers"`
	TotalDealers   int     `json:"totalDealers"`
	TotalOrders    int     `json:"totalOrders"`
	PendingOrders  int     `json:"pendingOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
	RecentOrders   []Order `json:"recentOrders"`
}

// GetDashboardStats derives admin dashboard figures from three
// independent collection reads. The reads run concurrently and are not
// a snapshot: under concurrent writers the three collections may be
// observed in mutually inconsistent states. Recent orders are the
// first five in storage order, not sorted by date.
func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var (
		users    *usersDoc
		orders   *ordersDoc
		payments *paymentsDoc
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, _, err = readDoc[usersDoc](gctx, s, CollectionUsers, "dashboard_stats")
		return err
	})
	g.Go(func() error {
		var err error
		orders, _, err = readDoc[ordersDoc](gctx, s, CollectionOrders, "dashboard_stats")
		return err
	})
	g.Go(func() error {
		var err error
		payments, _, err = readDoc[paymentsDoc](gctx, s, CollectionPayments, "dashboard_stats")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalCustomers: len(users.Customers),
		TotalDealers:   len(users.Dealers),
		TotalOrders:    len(orders.Orders),
	}

	for _, o := range orders.Orders {
		if o.Status == "pending" {
			stats.PendingOrders++
		}
	}
	for _, p := range payments.Payments {
		stats.TotalRevenue += p.Amount
	}

	recent := orders.Orders
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentOrders = append([]Order(nil), recent...)

	return stats, nil
}
