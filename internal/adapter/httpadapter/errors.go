package httpadapter

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/session"
)

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_request", Message: err.Error()})
}

// writeError maps a domain error to its status code and error kind.
func writeError(c *gin.Context, err error) {
	var (
		malformed    *domain.MalformedDataError
		invalidQuery *domain.InvalidQueryError
		unknown      *domain.UnknownResourceError
		invalidAmt   *domain.InvalidAmountError
		insufficient *domain.InsufficientStockError
		prediction   *domain.PredictionServiceError
		auth         *domain.AuthenticationError
	)

	switch {
	case errors.As(err, &malformed):
		c.JSON(http.StatusInternalServerError, errorBody{Error: "malformed_data", Message: err.Error(), Details: gin.H{"row": malformed.Row, "column": malformed.Column}})
	case errors.Is(err, domain.ErrEmptyCatalog):
		c.JSON(http.StatusNotFound, errorBody{Error: "empty_catalog", Message: err.Error()})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: "unknown_session", Message: err.Error()})
	case errors.Is(err, session.ErrNoLocation), errors.Is(err, errNoQuery), errors.As(err, &invalidQuery):
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_query", Message: err.Error()})
	case errors.As(err, &unknown):
		c.JSON(http.StatusBadRequest, errorBody{Error: "unknown_resource", Message: err.Error(), Details: gin.H{"resource": unknown.Resource}})
	case errors.As(err, &invalidAmt):
		details := gin.H{"resource": invalidAmt.Resource}
		if !math.IsNaN(invalidAmt.Amount) && !math.IsInf(invalidAmt.Amount, 0) {
			details["amount"] = invalidAmt.Amount
		}
		c.JSON(http.StatusBadRequest, errorBody{Error: "invalid_amount", Message: err.Error(), Details: details})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, errorBody{Error: "insufficient_stock", Message: err.Error(), Details: gin.H{
			"resource":  insufficient.Resource,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		}})
	case errors.As(err, &auth):
		c.JSON(http.StatusBadGateway, errorBody{Error: "authentication", Message: err.Error()})
	case errors.As(err, &prediction):
		c.JSON(http.StatusBadGateway, errorBody{Error: "prediction_service", Message: err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal", Message: "internal server error"})
	}
}
