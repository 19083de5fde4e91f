package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Resource types tracked for every stock record.
const (
	FoodAndWater    = "food_and_water"
	Clothing        = "clothing"
	Shelter         = "shelter"
	MedicalSupplies = "medical_supplies"
)

// ResourceTypes lists the tracked resource types in canonical column order.
var ResourceTypes = []string{FoodAndWater, Clothing, Shelter, MedicalSupplies}

// CanonicalColumns is the header written for catalogs that were not loaded
// from a file.
var CanonicalColumns = []string{"name", "latitude", "longitude", FoodAndWater, Clothing, Shelter, MedicalSupplies}

// columnAliases maps normalized header names to the field they populate.
// Older exports spell the medical column "medical suppliers".
var columnAliases = map[string]string{
	"name":              roleID,
	"id":                roleID,
	"location":          roleID,
	"latitude":          roleLat,
	"lat":               roleLat,
	"longitude":         roleLon,
	"lon":               roleLon,
	"lng":               roleLon,
	FoodAndWater:        FoodAndWater,
	Clothing:            Clothing,
	Shelter:             Shelter,
	MedicalSupplies:     MedicalSupplies,
	"medical_suppliers": MedicalSupplies,
}

const (
	roleID    = "_id"
	roleLat   = "_lat"
	roleLon   = "_lon"
	roleExtra = "_extra"
)

// StockRecord is one stockpile location with its per-resource quantities.
type StockRecord struct {
	ID         string         `json:"id"`
	Coordinate Coordinate     `json:"coordinate"`
	Quantities map[string]int `json:"quantities"`

	// Extra holds cells of columns the service does not interpret, keyed by
	// the raw header, so they survive a save.
	Extra map[string]string `json:"-"`
}

// Clone returns a deep copy of the record.
func (r StockRecord) Clone() StockRecord {
	out := r
	out.Quantities = make(map[string]int, len(r.Quantities))
	for k, v := range r.Quantities {
		out.Quantities[k] = v
	}
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Catalog is the ordered set of stock records loaded from tabular storage.
type Catalog struct {
	// Columns is the header as read from the source. Rows writes columns
	// back in this order.
	Columns []string
	Records []StockRecord
}

// Len returns the number of records.
func (c *Catalog) Len() int { return len(c.Records) }

// Find returns the index of the record with the given id.
func (c *Catalog) Find(id string) (int, bool) {
	for i := range c.Records {
		if c.Records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Replace swaps the record at index i.
func (c *Catalog) Replace(i int, r StockRecord) error {
	if i < 0 || i >= len(c.Records) {
		return fmt.Errorf("replace record: index %d out of range [0, %d)", i, len(c.Records))
	}
	c.Records[i] = r
	return nil
}

// Totals sums every resource type across all records.
func (c *Catalog) Totals() map[string]int {
	totals := make(map[string]int, len(ResourceTypes))
	for _, rt := range ResourceTypes {
		totals[rt] = 0
	}
	for _, r := range c.Records {
		for k, v := range r.Quantities {
			totals[k] += v
		}
	}
	return totals
}

// NormalizeColumn folds a header or resource name to its canonical spelling:
// trimmed, lower-cased, with runs of spaces and hyphens turned into "_".
func NormalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		if r == ' ' || r == '-' || r == '_' || r == '\t' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// layout maps each header position to the role it plays.
type layout struct {
	roles []string
}

func parseHeader(header []string) (layout, error) {
	l := layout{roles: make([]string, len(header))}
	seen := make(map[string]string, len(header))

	for i, h := range header {
		role, ok := columnAliases[NormalizeColumn(h)]
		if !ok {
			l.roles[i] = roleExtra
			continue
		}
		if prev, dup := seen[role]; dup {
			return layout{}, &MalformedDataError{Column: h, Reason: fmt.Sprintf("duplicates column %q", prev)}
		}
		seen[role] = h
		l.roles[i] = role
	}

	required := append([]string{roleLat, roleLon}, ResourceTypes...)
	for _, role := range required {
		if _, ok := seen[role]; !ok {
			return layout{}, &MalformedDataError{Column: displayRole(role), Reason: "required column is missing"}
		}
	}
	return l, nil
}

func displayRole(role string) string {
	switch role {
	case roleLat:
		return "latitude"
	case roleLon:
		return "longitude"
	}
	return role
}

func (l layout) hasID() bool {
	for _, r := range l.roles {
		if r == roleID {
			return true
		}
	}
	return false
}

// ParseCatalog builds a Catalog from a header and its data rows. Every row is
// checked before anything is returned; all problems are reported together as
// joined MalformedDataErrors.
func ParseCatalog(header []string, rows [][]string) (*Catalog, error) {
	l, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var errs []error
	records := make([]StockRecord, 0, len(rows))
	for i, row := range rows {
		rec, rowErrs := parseRow(header, l, i+1, row)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		records = append(records, rec)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	cols := make([]string, len(header))
	copy(cols, header)
	return &Catalog{Columns: cols, Records: records}, nil
}

func parseRow(header []string, l layout, rowNum int, row []string) (StockRecord, []error) {
	if len(row) > len(header) {
		return StockRecord{}, []error{&MalformedDataError{Row: rowNum, Column: "*", Reason: fmt.Sprintf("%d cells for %d columns", len(row), len(header))}}
	}

	rec := StockRecord{Quantities: make(map[string]int, len(ResourceTypes))}
	if !l.hasID() {
		rec.ID = strconv.Itoa(rowNum)
	}

	var errs []error
	var latOK, lonOK bool
	for col, role := range l.roles {
		cell := ""
		if col < len(row) {
			cell = strings.TrimSpace(row[col])
		}
		name := header[col]

		switch role {
		case roleID:
			rec.ID = cell
			if cell == "" {
				errs = append(errs, &MalformedDataError{Row: rowNum, Column: name, Reason: "value is missing"})
			}
		case roleLat:
			v, err := parseCoordinateCell(cell)
			if err != nil {
				errs = append(errs, &MalformedDataError{Row: rowNum, Column: name, Reason: err.Error()})
				continue
			}
			rec.Coordinate.Lat, latOK = v, true
		case roleLon:
			v, err := parseCoordinateCell(cell)
			if err != nil {
				errs = append(errs, &MalformedDataError{Row: rowNum, Column: name, Reason: err.Error()})
				continue
			}
			rec.Coordinate.Lon, lonOK = v, true
		case roleExtra:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[name] = cell
		default:
			q, err := parseQuantityCell(cell)
			if err != nil {
				errs = append(errs, &MalformedDataError{Row: rowNum, Column: name, Reason: err.Error()})
				continue
			}
			rec.Quantities[role] = q
		}
	}

	if latOK && lonOK {
		if err := rec.Coordinate.Validate(); err != nil {
			var qe *InvalidQueryError
			reason := err.Error()
			if errors.As(err, &qe) {
				reason = qe.Reason
			}
			errs = append(errs, &MalformedDataError{Row: rowNum, Column: "latitude/longitude", Reason: reason})
		}
	}
	return rec, errs
}

func parseCoordinateCell(cell string) (float64, error) {
	if cell == "" {
		return 0, errors.New("value is missing")
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", cell)
	}
	return v, nil
}

// parseQuantityCell accepts integers and integral floats ("500.0") in
// [0, MaxInt32].
func parseQuantityCell(cell string) (int, error) {
	if cell == "" {
		return 0, errors.New("value is missing")
	}
	if n, err := strconv.Atoi(cell); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("quantity %d is negative", n)
		}
		if n > math.MaxInt32 {
			return 0, fmt.Errorf("quantity %q is too large", cell)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not an integer", cell)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("quantity %q is not a whole number", cell)
	}
	if f < 0 {
		return 0, fmt.Errorf("quantity %q is negative", cell)
	}
	if f > math.MaxInt32 {
		return 0, fmt.Errorf("quantity %q is too large", cell)
	}
	return int(f), nil
}

// Rows renders the catalog back into a header and data rows, preserving the
// original column order and any uninterpreted columns.
func (c *Catalog) Rows() ([]string, [][]string, error) {
	header := c.Columns
	if len(header) == 0 {
		header = CanonicalColumns
	}
	l, err := parseHeader(header)
	if err != nil {
		return nil, nil, err
	}

	rows := make([][]string, 0, len(c.Records))
	for _, rec := range c.Records {
		row := make([]string, len(header))
		for col, role := range l.roles {
			switch role {
			case roleID:
				row[col] = rec.ID
			case roleLat:
				row[col] = strconv.FormatFloat(rec.Coordinate.Lat, 'f', -1, 64)
			case roleLon:
				row[col] = strconv.FormatFloat(rec.Coordinate.Lon, 'f', -1, 64)
			case roleExtra:
				row[col] = rec.Extra[header[col]]
			default:
				q, ok := rec.Quantities[role]
				if !ok {
					return nil, nil, fmt.Errorf("record %q has no %s quantity", rec.ID, role)
				}
				row[col] = strconv.Itoa(q)
			}
		}
		rows = append(rows, row)
	}

	out := make([]string, len(header))
	copy(out, header)
	return out, rows, nil
}
