package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Model identifies a hosted scoring deployment.
type Model string

const (
	ModelFlood      Model = "flood"
	ModelEarthquake Model = "earthquake"
)

// Scorer sends one feature vector to a hosted model and returns the first
// predicted value. Implementations return PredictionServiceError or
// AuthenticationError on failure and never retry.
type Scorer interface {
	Score(ctx context.Context, model Model, fields []string, values []any) (any, error)
}

// Field names expected by the hosted deployments, in vector order.
var (
	FloodFields      = []string{"Latitude", "Longitude", "Rainfall (mm)", "River Discharge (m³/s)", "Water Level (m)", "Historical Floods"}
	EarthquakeFields = []string{"depth", "magNst", "latitude", "longitude"}
)

// FloodFeatures are the inputs to the flood model.
type FloodFeatures struct {
	Coordinate
	RainfallMM        float64 `json:"rainfall_mm"`
	RiverDischargeM3S float64 `json:"river_discharge_m3s"`
	WaterLevelM       float64 `json:"water_level_m"`
	HistoricalFloods  bool    `json:"historical_floods"`
}

// Values returns the feature vector in FloodFields order. The historical
// flag is sent as "Yes"/"No", the encoding the model was trained on.
func (f FloodFeatures) Values() []any {
	hist := "No"
	if f.HistoricalFloods {
		hist = "Yes"
	}
	return []any{f.Lat, f.Lon, f.RainfallMM, f.RiverDischargeM3S, f.WaterLevelM, hist}
}

// EarthquakeFeatures are the inputs to the earthquake model.
type EarthquakeFeatures struct {
	Coordinate
	DepthKM float64 `json:"depth_km"`
	MagNst  float64 `json:"mag_nst"`
}

// Values returns the feature vector in EarthquakeFields order.
func (f EarthquakeFeatures) Values() []any {
	return []any{f.DepthKM, f.MagNst, f.Lat, f.Lon}
}

// FloodPrediction is the interpreted flood model output.
type FloodPrediction struct {
	Location Coordinate `json:"location"`
	Occurred bool       `json:"occurred"`
	Result   string     `json:"result"` // "Yes" or "No"
}

// EarthquakePrediction is the interpreted earthquake model output.
type EarthquakePrediction struct {
	Location  Coordinate `json:"location"`
	Magnitude float64    `json:"magnitude"`
	Category  string     `json:"category"`
}

// InterpretFlood reads a flood model value. Only a numeric 1 (or true)
// means a flood; any other value means none.
func InterpretFlood(v any) FloodPrediction {
	occurred := false
	if b, ok := v.(bool); ok {
		occurred = b
	} else if f, ok := numeric(v); ok {
		occurred = f == 1
	}
	p := FloodPrediction{Occurred: occurred, Result: "No"}
	if occurred {
		p.Result = "Yes"
	}
	return p
}

// InterpretMagnitude reads an earthquake model value as a magnitude rounded
// to two decimal places.
func InterpretMagnitude(v any) (float64, error) {
	if v == nil {
		return 0, &PredictionServiceError{Reason: "magnitude value is missing"}
	}
	f, ok := numeric(v)
	if !ok {
		s, isString := v.(string)
		if !isString {
			return 0, &PredictionServiceError{Reason: fmt.Sprintf("magnitude %v is not a number", v)}
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, &PredictionServiceError{Reason: fmt.Sprintf("magnitude %q is not a number", s)}
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &PredictionServiceError{Reason: "magnitude is not finite"}
	}
	return decimal.NewFromFloat(f).Round(2).InexactFloat64(), nil
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}
