package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rajmarketing/backend/internal/github"
)

// Collection names a whole-document JSON file in the backing store.
// The file names and document shapes are a compatibility surface and
// must not change.
type Collection string

const (
	CollectionUsers         Collection = "users.json"
	CollectionOrders        Collection = "orders.json"
	CollectionPayments      Collection = "payments.json"
	CollectionInstallations Collection = "installations.json"
	CollectionCarpenters    Collection = "carpenters.json"
	CollectionMemberships   Collection = "memberships.json"
	CollectionNotifications Collection = "notifications.json"
	CollectionServiceAreas  Collection = "service-areas.json"
)

type usersDoc struct {
	Customers []User `json:"customers"`
	Dealers   []User `json:"dealers"`
	Admins    []User `json:"admins"`
}

// byType returns the category slice a user type maps onto.
func (d *usersDoc) byType(t UserType) *[]User {
	switch t {
	case UserDealer:
		return &d.Dealers
	case UserAdmin:
		return &d.Admins
	default:
		return &d.Customers
	}
}

type ordersDoc struct {
	Orders []Order `json:"orders"`
}

type paymentsDoc struct {
	Payments []Payment `json:"payments"`
}

type installationsDoc struct {
	Installations []Installation `json:"installations"`
}

type carpentersDoc struct {
	Carpenters []Carpenter `json:"carpenters"`
}

type membershipsDoc struct {
	Memberships []Membership `json:"memberships"`
}

type notificationsDoc struct {
	Notifications []Notification `json:"notifications"`
}

type serviceAreasDoc struct {
	Areas []ServiceArea `json:"areas"`
}

// defaultDocs pairs each collection with its empty shape. Slices are
// initialized so the persisted default serializes as [] rather than
// null.
func defaultDocs() []struct {
	collection Collection
	doc        any
} {
	return []struct {
		collection Collection
		doc        any
	}{
		{CollectionUsers, &usersDoc{Customers: []User{}, Dealers: []User{}, Admins: []User{}}},
		{CollectionOrders, &ordersDoc{Orders: []Order{}}},
		{CollectionPayments, &paymentsDoc{Payments: []Payment{}}},
		{CollectionInstallations, &installationsDoc{Installations: []Installation{}}},
		{CollectionCarpenters, &carpentersDoc{Carpenters: []Carpenter{}}},
		{CollectionMemberships, &membershipsDoc{Memberships: []Membership{}}},
		{CollectionNotifications, &notificationsDoc{Notifications: []Notification{}}},
		{CollectionServiceAreas, &serviceAreasDoc{Areas: []ServiceArea{}}},
	}
}

// EnsureCollections creates every collection that does not yet exist,
// writing its default empty shape. Existing collections are left
// untouched whatever their content, so the call is idempotent.
func (s *Store) EnsureCollections(ctx context.Context) error {
	for _, d := range defaultDocs() {
		_, _, err := s.blobs.Get(ctx, string(d.collection))
		if err == nil {
			continue
		}
		if !errors.Is(err, github.ErrNotFound) {
			return fmt.Errorf("failed to check collection %s: %w", d.collection, err)
		}

		s.logger.Info("initializing collection", zap.String("collection", string(d.collection)))
		if _, err := s.Write(ctx, d.collection, d.doc, ""); err != nil {
			return fmt.Errorf("failed to initialize collection %s: %w", d.collection, err)
		}
	}
	return nil
}
