package domain

// Match is the result of a nearest-location lookup.
type Match struct {
	Index      int         `json:"index"`
	Record     StockRecord `json:"record"`
	DistanceKM float64     `json:"distance_km"`
}

// Nearest returns the record closest to query by geodesic distance. Ties go
// to the record that appears first in the catalog.
func Nearest(c *Catalog, query Coordinate) (Match, error) {
	if err := query.Validate(); err != nil {
		return Match{}, err
	}
	if c == nil || len(c.Records) == 0 {
		return Match{}, ErrEmptyCatalog
	}

	best := Match{Index: -1}
	for i, rec := range c.Records {
		d := DistanceKM(query, rec.Coordinate)
		if best.Index < 0 || d < best.DistanceKM {
			best = Match{Index: i, Record: rec, DistanceKM: d}
		}
	}
	best.Record = best.Record.Clone()
	return best, nil
}
