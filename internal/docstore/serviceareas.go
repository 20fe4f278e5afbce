package docstore

import "context"

type ServiceAreaInput struct {
	Name    string
	City    string
	Pincode string
}

// AddServiceArea appends a new service area.
func (s *Store) AddServiceArea(ctx context.Context, in ServiceAreaInput) (*ServiceArea, error) {
	area := ServiceArea{
		ID:        newID("AREA"),
		Name:      in.Name,
		City:      in.City,
		Pincode:   in.Pincode,
		CreatedAt: isoTime(s.now()),
	}

	err := mutateDoc(ctx, s, CollectionServiceAreas, "add_service_area", func(doc *serviceAreasDoc) (bool, error) {
		doc.Areas = append(doc.Areas, area)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return &area, nil
}

// ServiceAreas returns every service area in storage order.
func (s *Store) ServiceAreas(ctx context.Context) ([]ServiceArea, error) {
	doc, _, err := readDoc[serviceAreasDoc](ctx, s, CollectionServiceAreas, "service_areas")
	if err != nil {
		return nil, err
	}
	return doc.Areas, nil
}
