package docstore

import "context"

type MembershipInput struct {
	UserID string
	Type   string
	Amount float64
}

// CreateMembership appends a new membership with an expiry date
// derived from its type at creation time.
func (s *Store) CreateMembership(ctx context.Context, in MembershipInput) (*Membership, error) {
	now := s.now()
	membership := Membership{
		ID:         newID("MEM"),
		UserID:     in.UserID,
		Type:       in.Type,
		Status:     "active",
		Amount:     in.Amount,
		CreatedAt:  isoTime(now),
		ExpiryDate: isoTime(membershipExpiry(now, in.Type)),
	}

	err := mutateDoc(ctx, s, CollectionMemberships, "create_membership", func(doc *membershipsDoc) (bool, error) {
		doc.Memberships = append(doc.Memberships, membership)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// MembershipByUser returns the user's active membership, or nil when
// none exists.
func (s *Store) MembershipByUser(ctx context.Context, userID string) (*Membership, error) {
	doc, _, err := readDoc[membershipsDoc](ctx, s, CollectionMemberships, "membership_by_user")
	if err != nil {
		return nil, err
	}

	for _, m := range doc.Memberships {
		if m.UserID == userID && m.Status == "active" {
			return &m, nil
		}
	}
	return nil, nil
}
