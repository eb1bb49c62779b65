package dataset

import (
	"strings"
)

// Search returns the local matches for query in dataset order.
//
// An individual whose name contains the query yields one MatchIndividual and
// its addresses are not examined. Otherwise every property whose address
// contains the query yields one MatchProperty. Matching is case-insensitive.
// Returns ErrNotLoaded if no snapshot is present.
func (s *Store) Search(query string) ([]Match, error) {
	doc := s.doc.Load()
	if doc == nil {
		return nil, ErrNotLoaded
	}
	return doc.Search(query), nil
}

// Search matches query against the document. See Store.Search.
func (d *Document) Search(query string) []Match {
	q := strings.ToLower(query)
	var matches []Match

	for _, ind := range d.WealthyIndividuals {
		if strings.Contains(strings.ToLower(ind.Name), q) {
			matches = append(matches, Match{
				Kind:          MatchIndividual,
				Name:          ind.Name,
				NetWorth:      ind.NetWorth,
				PropertyCount: len(ind.Properties),
				Properties:    append([]Property(nil), ind.Properties...),
			})
			continue
		}

		for i := range ind.Properties {
			p := ind.Properties[i]
			if !strings.Contains(strings.ToLower(p.Address), q) {
				continue
			}
			matches = append(matches, Match{
				Kind:        MatchProperty,
				Owner:       ind.Name,
				NetWorth:    ind.NetWorth,
				Address:     p.Address,
				Value:       p.Value,
				Coordinates: p.Coordinates,
				Property:    &p,
			})
		}
	}

	return matches
}

// Individuals returns every individual in dataset order, or ErrNotLoaded.
func (s *Store) Individuals() ([]WealthyIndividual, error) {
	doc := s.doc.Load()
	if doc == nil {
		return nil, ErrNotLoaded
	}
	return append([]WealthyIndividual(nil), doc.WealthyIndividuals...), nil
}

// Individual returns the individual with exactly this name.
func (s *Store) Individual(name string) (*WealthyIndividual, bool) {
	doc := s.doc.Load()
	if doc == nil {
		return nil, false
	}
	for i := range doc.WealthyIndividuals {
		if doc.WealthyIndividuals[i].Name == name {
			ind := doc.WealthyIndividuals[i]
			return &ind, true
		}
	}
	return nil, false
}

// Property returns the owner's property with exactly this address.
func (s *Store) Property(owner, address string) (*Property, *WealthyIndividual, bool) {
	ind, ok := s.Individual(owner)
	if !ok {
		return nil, nil, false
	}
	for i := range ind.Properties {
		if ind.Properties[i].Address == address {
			p := ind.Properties[i]
			return &p, ind, true
		}
	}
	return nil, nil, false
}
