package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/observability"
	"github.com/couchcryptid/disaster-relief/internal/session"
)

// SessionStore is the part of the session manager the prediction flow uses.
type SessionStore interface {
	Record(id string, model domain.Model, loc domain.Coordinate) (session.Session, error)
}

// PredictionService scores disaster risk for a coordinate and remembers the
// coordinate on the caller's session. The coordinate is kept even when scoring
// fails so the resource tracking view can still resolve stock for it.
type PredictionService struct {
	scorer   domain.Scorer
	sessions SessionStore
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewPredictionService creates a PredictionService. A nil scorer makes every
// prediction fail with a PredictionServiceError.
func NewPredictionService(scorer domain.Scorer, sessions SessionStore, logger *slog.Logger, metrics *observability.Metrics) *PredictionService {
	return &PredictionService{
		scorer:   scorer,
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
	}
}

// PredictFlood asks the flood model whether a flood is expected.
func (p *PredictionService) PredictFlood(ctx context.Context, sessionID string, f domain.FloodFeatures) (domain.FloodPrediction, error) {
	v, err := p.score(ctx, sessionID, domain.ModelFlood, f.Coordinate, domain.FloodFields, f.Values())
	if err != nil {
		return domain.FloodPrediction{}, err
	}
	pred := domain.InterpretFlood(v)
	pred.Location = f.Coordinate
	p.metrics.Predictions.WithLabelValues(string(domain.ModelFlood), "success").Inc()
	p.logger.Info("flood prediction", "latitude", f.Lat, "longitude", f.Lon, "result", pred.Result)
	return pred, nil
}

// PredictEarthquake asks the earthquake model for a magnitude and classifies it.
func (p *PredictionService) PredictEarthquake(ctx context.Context, sessionID string, f domain.EarthquakeFeatures) (domain.EarthquakePrediction, error) {
	v, err := p.score(ctx, sessionID, domain.ModelEarthquake, f.Coordinate, domain.EarthquakeFields, f.Values())
	if err != nil {
		return domain.EarthquakePrediction{}, err
	}
	mag, err := domain.InterpretMagnitude(v)
	if err != nil {
		p.metrics.Predictions.WithLabelValues(string(domain.ModelEarthquake), outcome(err)).Inc()
		return domain.EarthquakePrediction{}, err
	}
	pred := domain.EarthquakePrediction{
		Location:  f.Coordinate,
		Magnitude: mag,
		Category:  domain.CategorizeMagnitude(mag),
	}
	p.metrics.Predictions.WithLabelValues(string(domain.ModelEarthquake), "success").Inc()
	p.logger.Info("earthquake prediction", "latitude", f.Lat, "longitude", f.Lon, "magnitude", mag, "category", pred.Category)
	return pred, nil
}

// score validates the coordinate, records it on the session and calls the
// model.
func (p *PredictionService) score(ctx context.Context, sessionID string, model domain.Model, loc domain.Coordinate, fields []string, values []any) (any, error) {
	if err := loc.Validate(); err != nil {
		p.metrics.Predictions.WithLabelValues(string(model), outcome(err)).Inc()
		return nil, err
	}
	if err := p.remember(sessionID, model, loc); err != nil {
		return nil, err
	}
	if p.scorer == nil {
		err := &domain.PredictionServiceError{Reason: "predictions are not configured"}
		p.metrics.Predictions.WithLabelValues(string(model), outcome(err)).Inc()
		return nil, err
	}

	start := time.Now()
	v, err := p.scorer.Score(ctx, model, fields, values)
	p.metrics.PredictionTime.WithLabelValues(string(model)).Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.Predictions.WithLabelValues(string(model), outcome(err)).Inc()
		p.logger.Warn("prediction failed", "model", model, "error", err)
		return nil, err
	}
	return v, nil
}

// remember records the predicted coordinate on the session, if there is one.
func (p *PredictionService) remember(sessionID string, model domain.Model, loc domain.Coordinate) error {
	if sessionID == "" {
		return nil
	}
	_, err := p.sessions.Record(sessionID, model, loc)
	return err
}
