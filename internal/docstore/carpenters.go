package docstore

import (
	"context"
	"slices"
)

type CarpenterInput struct {
	Name  string
	Phone string
	Areas []string
}

// CarpenterUpdate carries the mutable carpenter fields; nil means
// leave as is. Rating and JobsCompleted are maintained by external
// review/job flows, so they are updatable here but never computed.
type CarpenterUpdate struct {
	Name          *string
	Phone         *string
	Areas         *[]string
	Status        *string
	Rating        *float64
	JobsCompleted *int
}

// AddCarpenter appends a new active carpenter with initial rating 5.0
// and zero completed jobs.
func (s *Store) AddCarpenter(ctx context.Context, in CarpenterInput) (*Carpenter, error) {
	carpenter := Carpenter{
		ID:            newID("CAR"),
		Name:          in.Name,
		Phone:         in.Phone,
		Areas:         in.Areas,
		Status:        "active",
		Rating:        5.0,
		JobsCompleted: 0,
		CreatedAt:     isoTime(s.now()),
	}
	if carpenter.Areas == nil {
		carpenter.Areas = []string{}
	}

	err := mutateDoc(ctx, s, CollectionCarpenters, "add_carpenter", func(doc *carpentersDoc) (bool, error) {
		doc.Carpenters = append(doc.Carpenters, carpenter)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &carpenter, nil
}

// UpdateCarpenter shallow-merges the non-nil fields of upd into the
// carpenter with the given id. Returns nil on an unknown id.
func (s *Store) UpdateCarpenter(ctx context.Context, carpenterID string, upd CarpenterUpdate) (*Carpenter, error) {
	var updated *Carpenter
	err := mutateDoc(ctx, s, CollectionCarpenters, "update_carpenter", func(doc *carpentersDoc) (bool, error) {
		updated = nil
		for i := range doc.Carpenters {
			c := &doc.Carpenters[i]
			if c.ID != carpenterID {
				continue
			}
			applyString(&c.Name, upd.Name)
			applyString(&c.Phone, upd.Phone)
			applyString(&c.Status, upd.Status)
			if upd.Areas != nil {
				c.Areas = *upd.Areas
			}
			if upd.Rating != nil {
				c.Rating = *upd.Rating
			}
			if upd.JobsCompleted != nil {
				c.JobsCompleted = *upd.JobsCompleted
			}
			c.UpdatedAt = isoTime(s.now())
			copied := *c
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

// CarpentersByArea lists active carpenters whose service areas include
// the given area. An empty area returns all active carpenters.
func (s *Store) CarpentersByArea(ctx context.Context, area string) ([]Carpenter, error) {
	doc, _, err := readDoc[carpentersDoc](ctx, s, CollectionCarpenters, "carpenters_by_area")
	if err != nil {
		return nil, err
	}

	var carpenters []Carpenter
	for _, c := range doc.Carpenters {
		if c.Status != "active" {
			continue
		}
		if area == "" || slices.Contains(c.Areas, area) {
			carpenters = append(carpenters, c)
		}
	}
	return carpenters, nil
}
