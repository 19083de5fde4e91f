package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/service"
	"github.com/couchcryptid/disaster-relief/internal/session"
)

// StockService is the stock catalog and allocation surface used by the API.
type StockService interface {
	Catalog(ctx context.Context) (*domain.Catalog, error)
	Nearest(ctx context.Context, query domain.Coordinate) (domain.Match, error)
	Allocate(ctx context.Context, in service.AllocationInput) (service.AllocationResult, error)
}

// PredictionService scores disaster risk.
type PredictionService interface {
	PredictFlood(ctx context.Context, sessionID string, f domain.FloodFeatures) (domain.FloodPrediction, error)
	PredictEarthquake(ctx context.Context, sessionID string, f domain.EarthquakeFeatures) (domain.EarthquakePrediction, error)
}

// SessionManager holds dashboard sessions.
type SessionManager interface {
	Create() session.Session
	Get(id string) (session.Session, error)
	Location(id string) (domain.Coordinate, error)
	Clear(id string) error
}

// Handler serves the dashboard API.
type Handler struct {
	stock       StockService
	predictions PredictionService
	sessions    SessionManager
}

// NewHandler creates a Handler.
func NewHandler(stock StockService, predictions PredictionService, sessions SessionManager) *Handler {
	return &Handler{stock: stock, predictions: predictions, sessions: sessions}
}

// CreateSession starts an empty session.
func (h *Handler) CreateSession(c *gin.Context) {
	c.JSON(http.StatusCreated, h.sessions.Create())
}

// GetSession returns the session's recorded location and disaster type.
func (h *Handler) GetSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ClearSession forgets the session.
func (h *Handler) ClearSession(c *gin.Context) {
	if err := h.sessions.Clear(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type floodRequest struct {
	SessionID         string   `json:"session_id"`
	Latitude          *float64 `json:"latitude" binding:"required"`
	Longitude         *float64 `json:"longitude" binding:"required"`
	RainfallMM        *float64 `json:"rainfall_mm" binding:"required"`
	RiverDischargeM3S *float64 `json:"river_discharge_m3s" binding:"required"`
	WaterLevelM       *float64 `json:"water_level_m" binding:"required"`
	HistoricalFloods  bool     `json:"historical_floods"`
}

// PredictFlood scores flood risk for a coordinate.
func (h *Handler) PredictFlood(c *gin.Context) {
	var req floodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	pred, err := h.predictions.PredictFlood(c.Request.Context(), req.SessionID, domain.FloodFeatures{
		Coordinate:        domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude},
		RainfallMM:        *req.RainfallMM,
		RiverDischargeM3S: *req.RiverDischargeM3S,
		WaterLevelM:       *req.WaterLevelM,
		HistoricalFloods:  req.HistoricalFloods,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pred)
}

type earthquakeRequest struct {
	SessionID string   `json:"session_id"`
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	DepthKM   *float64 `json:"depth_km" binding:"required"`
	MagNst    *float64 `json:"mag_nst" binding:"required"`
}

// PredictEarthquake scores earthquake magnitude for a coordinate.
func (h *Handler) PredictEarthquake(c *gin.Context) {
	var req earthquakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	pred, err := h.predictions.PredictEarthquake(c.Request.Context(), req.SessionID, domain.EarthquakeFeatures{
		Coordinate: domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude},
		DepthKM:    *req.DepthKM,
		MagNst:     *req.MagNst,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pred)
}

// EarthquakeCategory classifies the magnitude query parameter.
func (h *Handler) EarthquakeCategory(c *gin.Context) {
	m := c.Query("magnitude")
	c.JSON(http.StatusOK, gin.H{
		"magnitude": m,
		"category":  domain.CategorizeMagnitudeString(m),
	})
}

// ListStock returns every stock record and per-resource totals.
func (h *Handler) ListStock(c *gin.Context) {
	catalog, err := h.stock.Catalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	records := catalog.Records
	if records == nil {
		records = []domain.StockRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"totals":  catalog.Totals(),
	})
}

// NearestStock resolves the stock location nearest to the session's
// coordinate, or to explicit lat/lon query parameters.
func (h *Handler) NearestStock(c *gin.Context) {
	query, err := h.resolveQuery(c.Query("session_id"), c.Query("lat"), c.Query("lon"))
	if err != nil {
		writeError(c, err)
		return
	}
	m, err := h.stock.Nearest(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"record":      m.Record,
		"distance_km": m.DistanceKM,
	})
}

type allocationRequest struct {
	SessionID   string                     `json:"session_id"`
	Latitude    *float64                   `json:"latitude"`
	Longitude   *float64                   `json:"longitude"`
	Allocations map[string]json.RawMessage `json:"allocations" binding:"required"`
}

// amounts decodes each requested amount. Values that are not JSON numbers
// become NaN so the allocation rejects them with InvalidAmountError after
// the unknown-resource check.
func (r allocationRequest) amounts() domain.AllocationRequest {
	out := make(domain.AllocationRequest, len(r.Allocations))
	for k, raw := range r.Allocations {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			out[k] = math.NaN()
			continue
		}
		f, ok := v.(float64)
		if !ok {
			f = math.NaN()
		}
		out[k] = f
	}
	return out
}

// Allocate takes stock from the location nearest to the request's coordinate.
func (h *Handler) Allocate(c *gin.Context) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}

	var query domain.Coordinate
	var err error
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		query = domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}
	case req.SessionID != "":
		query, err = h.sessions.Location(req.SessionID)
	default:
		err = errNoQuery
	}
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.stock.Allocate(c.Request.Context(), service.AllocationInput{
		SessionID: req.SessionID,
		Query:     query,
		Request:   req.amounts(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

var errNoQuery = errors.New("a session_id or both latitude and longitude are required")

// resolveQuery prefers explicit coordinates over the session's location.
func (h *Handler) resolveQuery(sessionID, lat, lon string) (domain.Coordinate, error) {
	if lat != "" || lon != "" {
		la, errLat := strconv.ParseFloat(lat, 64)
		lo, errLon := strconv.ParseFloat(lon, 64)
		if errLat != nil || errLon != nil {
			return domain.Coordinate{}, &domain.InvalidQueryError{Reason: "lat and lon must both be numbers"}
		}
		return domain.Coordinate{Lat: la, Lon: lo}, nil
	}
	if sessionID != "" {
		return h.sessions.Location(sessionID)
	}
	return domain.Coordinate{}, errNoQuery
}
