package docstore

import "context"

type InstallationInput struct {
	OrderID       string
	CustomerID    string
	DealerID      string
	Address       string
	ScheduledDate string
	Notes         string
}

// InstallationUpdate carries the optional fields an installation may
// acquire after scheduling; nil means leave as is.
type InstallationUpdate struct {
	CarpenterID   *string
	ScheduledDate *string
	CompletedDate *string
	Notes         *string
}

// ScheduleInstallation appends a new installation in scheduled state.
func (s *Store) ScheduleInstallation(ctx context.Context, in InstallationInput) (*Installation, error) {
	installation := Installation{
		ID:            newID("INS"),
		OrderID:       in.OrderID,
		CustomerID:    in.CustomerID,
		DealerID:      in.DealerID,
		Address:       in.Address,
		ScheduledDate: in.ScheduledDate,
		Notes:         in.Notes,
		Status:        "scheduled",
		CreatedAt:     isoTime(s.now()),
	}

	err := mutateDoc(ctx, s, CollectionInstallations, "schedule_installation", func(doc *installationsDoc) (bool, error) {
		doc.Installations = append(doc.Installations, installation)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &installation, nil
}

// UpdateInstallation sets the installation's status and merges the
// non-nil fields of upd. Returns nil on an unknown installation id.
func (s *Store) UpdateInstallation(ctx context.Context, installationID, status string, upd InstallationUpdate) (*Installation, error) {
	var updated *Installation
	err := mutateDoc(ctx, s, CollectionInstallations, "update_installation", func(doc *installationsDoc) (bool, error) {
		updated = nil
		for i := range doc.Installations {
			ins := &doc.Installations[i]
			if ins.ID != installationID {
				continue
			}
			ins.Status = status
			applyString(&ins.CarpenterID, upd.CarpenterID)
			applyString(&ins.ScheduledDate, upd.ScheduledDate)
			applyString(&ins.CompletedDate, upd.CompletedDate)
			applyString(&ins.Notes, upd.Notes)
			ins.UpdatedAt = isoTime(s.now())
			copied := *ins
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

// DealerInstallations lists the installations assigned to a dealer id.
func (s *Store) DealerInstallations(ctx context.Context, dealerID string) ([]Installation, error) {
	doc, _, err := readDoc[installationsDoc](ctx, s, CollectionInstallations, "dealer_installations")
	if err != nil {
		return nil, err
	}

	var installations []Installation
	for _, ins := range doc.Installations {
		if ins.DealerID == dealerID {
			installations = append(installations, ins)
		}
	}
	return installations, nil
}
