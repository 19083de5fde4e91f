// Command stockcheck loads a resources CSV the same way the dashboard does
// and reports every malformed cell, per-location quantities and totals, and
// optionally the location nearest to a coordinate.
//
// Usage:
//
//	go run ./cmd/stockcheck -file resources_data.csv -lat 28.7 -lon 77.1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/couchcryptid/disaster-relief/internal/adapter/csvstore"
	"github.com/couchcryptid/disaster-relief/internal/domain"
)

func main() {
	file := flag.String("file", "resources_data.csv", "path to the resources CSV")
	lat := flag.String("lat", "", "latitude of a location to resolve (optional)")
	lon := flag.String("lon", "", "longitude of a location to resolve (optional)")
	flag.Parse()

	if (*lat == "") != (*lon == "") {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(context.Background(), *file, *lat, *lon, os.Stdout))
}

func run(ctx context.Context, path, lat, lon string, out io.Writer) int {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := csvstore.New(path, logger).Load(ctx)
	if err != nil {
		reportLoadError(out, err)
		return 1
	}

	fmt.Fprintf(out, "=== %s: %d locations ===\n\n", path, catalog.Len())
	fmt.Fprintf(out, "  %-20s %10s %10s %8s %8s %8s %8s\n", "location", "latitude", "longitude", "food", "clothing", "shelter", "medical")
	for _, r := range catalog.Records {
		fmt.Fprintf(out, "  %-20s %10.4f %10.4f %8d %8d %8d %8d\n",
			r.ID, r.Coordinate.Lat, r.Coordinate.Lon,
			r.Quantities[domain.FoodAndWater], r.Quantities[domain.Clothing],
			r.Quantities[domain.Shelter], r.Quantities[domain.MedicalSupplies])
	}

	totals := catalog.Totals()
	fmt.Fprintf(out, "  %-20s %10s %10s %8d %8d %8d %8d\n", "TOTAL", "", "",
		totals[domain.FoodAndWater], totals[domain.Clothing], totals[domain.Shelter], totals[domain.MedicalSupplies])

	if lat == "" {
		return 0
	}

	query, err := parseCoordinate(lat, lon)
	if err != nil {
		fmt.Fprintf(out, "\nFAIL: %v\n", err)
		return 1
	}
	m, err := domain.Nearest(catalog, query)
	if err != nil {
		fmt.Fprintf(out, "\nFAIL: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "\nNearest to (%g, %g): %s, %.2f km\n", query.Lat, query.Lon, m.Record.ID, m.DistanceKM)
	return 0
}

func parseCoordinate(lat, lon string) (domain.Coordinate, error) {
	la, errLat := strconv.ParseFloat(lat, 64)
	lo, errLon := strconv.ParseFloat(lon, 64)
	if errLat != nil || errLon != nil {
		return domain.Coordinate{}, &domain.InvalidQueryError{Reason: "lat and lon must both be numbers"}
	}
	return domain.Coordinate{Lat: la, Lon: lo}, nil
}

// reportLoadError prints one line per malformed cell, or the single error
// when the file could not be read at all.
func reportLoadError(out io.Writer, err error) {
	var problems []*domain.MalformedDataError
	collectMalformed(err, &problems)
	if len(problems) == 0 {
		fmt.Fprintf(out, "FAIL: %v\n", err)
		return
	}

	fmt.Fprintf(out, "FAIL (%d errors)\n", len(problems))
	for i, p := range problems {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, p.Error())
	}
}

func collectMalformed(err error, into *[]*domain.MalformedDataError) {
	if err == nil {
		return
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectMalformed(e, into)
		}
		return
	}
	if m, ok := err.(*domain.MalformedDataError); ok {
		*into = append(*into, m)
		return
	}
	collectMalformed(errors.Unwrap(err), into)
}
