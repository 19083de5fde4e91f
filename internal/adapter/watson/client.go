// Package watson calls hosted scoring deployments on IBM Watson Machine
// Learning. It implements domain.Scorer.
package watson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/disaster-relief/internal/domain"
)

// Client sends feature vectors to per-model scoring endpoints.
type Client struct {
	http      *resty.Client
	tokens    TokenSource
	endpoints map[domain.Model]string
	logger    *slog.Logger
}

// NewClient creates a scoring client. endpoints maps each model to its
// deployment's predictions URL.
func NewClient(tokens TokenSource, endpoints map[domain.Model]string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		tokens:    tokens,
		endpoints: endpoints,
		logger:    logger,
	}
}

type inputData struct {
	Fields []string `json:"fields"`
	Values [][]any  `json:"values"`
}

type scoringRequest struct {
	InputData []inputData `json:"input_data"`
}

type scoringResponse struct {
	Predictions []struct {
		Fields []string `json:"fields"`
		Values [][]any  `json:"values"`
	} `json:"predictions"`
}

// Score posts one row of values and returns predictions[0].values[0][0].
func (c *Client) Score(ctx context.Context, model domain.Model, fields []string, values []any) (any, error) {
	endpoint, ok := c.endpoints[model]
	if !ok || endpoint == "" {
		return nil, fmt.Errorf("score %s: %w", model, &domain.PredictionServiceError{Reason: "no endpoint configured"})
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", model, err)
	}

	payload := scoringRequest{InputData: []inputData{{Fields: fields, Values: [][]any{values}}}}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(payload).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("score %s: %w", model, &domain.PredictionServiceError{Reason: err.Error()})
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("scoring request rejected", "model", model, "status", resp.StatusCode())
		return nil, fmt.Errorf("score %s: %w", model, &domain.PredictionServiceError{StatusCode: resp.StatusCode(), Reason: truncate(resp.String())})
	}

	var sr scoringResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("score %s: %w", model, &domain.PredictionServiceError{StatusCode: resp.StatusCode(), Reason: fmt.Sprintf("decode response: %v", err)})
	}
	if len(sr.Predictions) == 0 || len(sr.Predictions[0].Values) == 0 || len(sr.Predictions[0].Values[0]) == 0 || sr.Predictions[0].Values[0][0] == nil {
		return nil, fmt.Errorf("score %s: %w", model, &domain.PredictionServiceError{StatusCode: resp.StatusCode(), Reason: "response has no predictions[0].values[0][0]"})
	}
	return sr.Predictions[0].Values[0][0], nil
}
