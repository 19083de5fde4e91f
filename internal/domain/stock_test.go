package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legacyHeader = []string{"Latitude", "longitude", "food and water", "clothing", "shelter", "medical suppliers"}

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		"Latitude":          "latitude",
		" food and water ":  "food_and_water",
		"Food-And-Water":    "food_and_water",
		"medical  supplies": "medical_supplies",
		"food_and_water":    "food_and_water",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColumn(in), "input %q", in)
	}
}

func TestParseCatalog_LegacyHeader(t *testing.T) {
	c, err := ParseCatalog(legacyHeader, [][]string{
		{"28.70", "77.10", "500", "300", "120", "80"},
		{"19.08", "72.88", "700.0", "250", "90", "60"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	first := c.Records[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, Coordinate{Lat: 28.70, Lon: 77.10}, first.Coordinate)
	assert.Equal(t, map[string]int{FoodAndWater: 500, Clothing: 300, Shelter: 120, MedicalSupplies: 80}, first.Quantities)

	assert.Equal(t, "2", c.Records[1].ID)
	assert.Equal(t, 700, c.Records[1].Quantities[FoodAndWater])
}

func TestParseCatalog_LabelAndExtraColumns(t *testing.T) {
	header := []string{"name", "latitude", "longitude", "food_and_water", "clothing", "shelter", "medical_supplies", "contact"}
	c, err := ParseCatalog(header, [][]string{
		{"Delhi", "28.70", "77.10", "500", "300", "120", "80", "+91 11 0000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Delhi", c.Records[0].ID)
	assert.Equal(t, "+91 11 0000", c.Records[0].Extra["contact"])
}

func TestParseCatalog_MissingColumn(t *testing.T) {
	_, err := ParseCatalog([]string{"latitude", "longitude", "food_and_water", "clothing", "shelter"}, nil)
	var me *MalformedDataError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, MedicalSupplies, me.Column)
	assert.Zero(t, me.Row)
}

func TestParseCatalog_DuplicateColumn(t *testing.T) {
	header := append([]string{"lat"}, legacyHeader...)
	_, err := ParseCatalog(header, nil)
	var me *MalformedDataError
	require.True(t, errors.As(err, &me))
	assert.Contains(t, me.Error(), "duplicates")
}

func TestParseCatalog_ChecksEveryRow(t *testing.T) {
	_, err := ParseCatalog(legacyHeader, [][]string{
		{"28.70", "77.10", "500", "300", "120", "80"},
		{"", "72.88", "700", "250", "90", "60"},
		{"19.08", "72.88", "700", "", "90", "60"},
		{"19.08", "72.88", "700", "250", "-1", "60"},
		{"19.08", "72.88", "7.5", "250", "1", "60"},
		{"95", "72.88", "1", "1", "1", "1"},
		{"19.08", "72.88", "1", "1"},
	})
	require.Error(t, err)

	var joined interface{ Unwrap() []error }
	require.True(t, errors.As(err, &joined))

	var got []string
	for _, e := range joined.Unwrap() {
		var me *MalformedDataError
		require.True(t, errors.As(e, &me))
		got = append(got, me.Column)
	}
	want := []string{"Latitude", "clothing", "shelter", "food and water", "latitude/longitude", "shelter", "medical suppliers"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("malformed columns mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCatalog_TooManyCells(t *testing.T) {
	_, err := ParseCatalog(legacyHeader, [][]string{{"1", "2", "3", "4", "5", "6", "7"}})
	var me *MalformedDataError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 1, me.Row)
}

func TestParseCatalog_EmptyLabel(t *testing.T) {
	_, err := ParseCatalog(CanonicalColumns, [][]string{{"", "1", "1", "1", "1", "1", "1"}})
	var me *MalformedDataError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "name", me.Column)
}

func TestParseCatalog_QuantityBounds(t *testing.T) {
	tests := []struct {
		cell string
		want int
		err  string
	}{
		{cell: "2147483647", want: 2147483647},
		{cell: "2147483647.0", want: 2147483647},
		{cell: "2147483648", err: "too large"},
		{cell: "2147483648.0", err: "too large"},
		{cell: "99999999999999999999", err: "too large"},
		{cell: "-1", err: "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			c, err := ParseCatalog(legacyHeader, [][]string{{"28.7", "77.1", tt.cell, "1", "1", "1"}})
			if tt.err != "" {
				var me *MalformedDataError
				require.ErrorAs(t, err, &me)
				assert.Equal(t, "food and water", me.Column)
				assert.Contains(t, me.Reason, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Records[0].Quantities[FoodAndWater])
		})
	}
}

func TestCatalog_RowsRoundTrip(t *testing.T) {
	header := []string{"name", "Latitude", "longitude", "food and water", "clothing", "shelter", "medical suppliers", "notes"}
	rows := [][]string{
		{"Delhi", "28.7", "77.1", "500", "300", "120", "80", "north"},
		{"Mumbai", "19.08", "72.88", "700", "250", "90", "60", ""},
	}
	c, err := ParseCatalog(header, rows)
	require.NoError(t, err)

	gotHeader, gotRows, err := c.Rows()
	require.NoError(t, err)
	assert.Equal(t, header, gotHeader)
	if diff := cmp.Diff(rows, gotRows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_RowsCanonicalHeader(t *testing.T) {
	c := &Catalog{Records: []StockRecord{{
		ID:         "Delhi",
		Coordinate: delhi,
		Quantities: map[string]int{FoodAndWater: 1, Clothing: 2, Shelter: 3, MedicalSupplies: 4},
	}}}
	header, rows, err := c.Rows()
	require.NoError(t, err)
	assert.Equal(t, CanonicalColumns, header)
	assert.Equal(t, [][]string{{"Delhi", "28.7", "77.1", "1", "2", "3", "4"}}, rows)
}

func TestCatalog_RowsMissingQuantity(t *testing.T) {
	c := &Catalog{Records: []StockRecord{{ID: "x", Quantities: map[string]int{FoodAndWater: 1}}}}
	_, _, err := c.Rows()
	require.Error(t, err)
}

func TestCatalog_FindReplaceTotals(t *testing.T) {
	c := testCatalog()

	i, ok := c.Find("Mumbai")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = c.Find("Chennai")
	assert.False(t, ok)

	updated := c.Records[i].Clone()
	updated.Quantities[FoodAndWater] = 1
	require.NoError(t, c.Replace(i, updated))
	assert.Equal(t, 501, c.Totals()[FoodAndWater])

	assert.Error(t, c.Replace(5, updated))
}

func TestStockRecord_CloneIsDeep(t *testing.T) {
	r := StockRecord{ID: "a", Quantities: map[string]int{FoodAndWater: 1}, Extra: map[string]string{"x": "y"}}
	c := r.Clone()
	c.Quantities[FoodAndWater] = 99
	c.Extra["x"] = "z"
	assert.Equal(t, 1, r.Quantities[FoodAndWater])
	assert.Equal(t, "y", r.Extra["x"])
}

func testCatalog() *Catalog {
	q := func(food int) map[string]int {
		return map[string]int{FoodAndWater: food, Clothing: 100, Shelter: 50, MedicalSupplies: 20}
	}
	return &Catalog{
		Columns: CanonicalColumns,
		Records: []StockRecord{
			{ID: "Delhi", Coordinate: delhi, Quantities: q(500)},
			{ID: "Mumbai", Coordinate: mumbai, Quantities: q(700)},
		},
	}
}
