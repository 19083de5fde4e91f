package watson

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/observability"
)

const (
	apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"

	// refreshMargin is how long before expiry a cached token is replaced.
	refreshMargin = time.Minute
)

// TokenSource returns a bearer token for the scoring API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Authenticator exchanges an API key for an IAM access token and caches it
// until shortly before it expires. Failures are not retried.
type Authenticator struct {
	http    *resty.Client
	iamURL  string
	apiKey  string
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewAuthenticator creates an Authenticator for the given IAM token endpoint.
func NewAuthenticator(iamURL, apiKey string, timeout time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		http:    resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		iamURL:  iamURL,
		apiKey:  apiKey,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token returns the cached token, or fetches a new one when the cache is
// empty or about to expire.
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.clock.Now().Before(a.expiresAt) {
		return a.token, nil
	}

	token, ttl, err := a.fetch(ctx)
	if err != nil {
		a.metrics.TokenRefreshes.WithLabelValues("error").Inc()
		a.token = ""
		return "", err
	}
	a.metrics.TokenRefreshes.WithLabelValues("success").Inc()

	a.token = token
	a.expiresAt = a.clock.Now().Add(ttl - refreshMargin)
	a.logger.Debug("iam token refreshed", "expires_in", ttl)
	return token, nil
}

func (a *Authenticator) fetch(ctx context.Context) (string, time.Duration, error) {
	resp, err := a.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"apikey":     a.apiKey,
			"grant_type": apiKeyGrantType,
		}).
		Post(a.iamURL)
	if err != nil {
		return "", 0, &domain.AuthenticationError{Reason: err.Error()}
	}
	if resp.StatusCode() != http.StatusOK {
		return "", 0, &domain.AuthenticationError{StatusCode: resp.StatusCode(), Reason: truncate(resp.String())}
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body(), &tr); err != nil {
		return "", 0, &domain.AuthenticationError{StatusCode: resp.StatusCode(), Reason: fmt.Sprintf("decode token response: %v", err)}
	}
	if tr.AccessToken == "" {
		return "", 0, &domain.AuthenticationError{StatusCode: resp.StatusCode(), Reason: "response has no access_token"}
	}
	return tr.AccessToken, time.Duration(tr.ExpiresIn) * time.Second, nil
}

// truncate bounds upstream error bodies carried in error messages.
func truncate(s string) string {
	const limit = 512
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
