package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resources_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validCSV = `name,latitude,longitude,food_and_water,clothing,shelter,medical_supplies
Delhi,28.6139,77.209,500,300,200,100
Mumbai,19.076,72.8777,400,250,150,80
`

func TestRun_Valid(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), writeCSV(t, validCSV), "", "", &out)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "2 locations")
	assert.Contains(t, out.String(), "Delhi")
	assert.Regexp(t, `TOTAL\s+900\s+550\s+350\s+180`, out.String())
}

func TestRun_Nearest(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), writeCSV(t, validCSV), "19.1", "72.9", &out)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Nearest to (19.1, 72.9): Mumbai")
}

func TestRun_InvalidQuery(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), writeCSV(t, validCSV), "95", "0", &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "latitude out of range")
}

func TestRun_ReportsEveryMalformedCell(t *testing.T) {
	csv := `name,latitude,longitude,food_and_water,clothing,shelter,medical_supplies
Delhi,28.6139,77.209,500,,200,100
Mumbai,north,72.8777,400,250,150,-3
`
	var out bytes.Buffer
	code := run(context.Background(), writeCSV(t, csv), "", "", &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FAIL (3 errors)")
	assert.Contains(t, out.String(), `row 1, column "clothing"`)
	assert.Contains(t, out.String(), `row 2, column "latitude"`)
	assert.Contains(t, out.String(), `row 2, column "medical_supplies"`)
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), "", "", &out)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FAIL: open stock file")
}
