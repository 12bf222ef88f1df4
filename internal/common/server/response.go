package server

import (
	"errors"
	"net/http"

	"github.com/AutoMercado/AutoMercado/internal/common/domain"
	"github.com/gin-gonic/gin"
)

// errorStatusMap translates the shared sentinel errors to HTTP statuses.
var errorStatusMap = map[error]int{
	domain.ErrInternal:   http.StatusInternalServerError,
	domain.ErrValidation: http.StatusBadRequest,

	domain.ErrUserNotFound:    http.StatusNotFound,
	domain.ErrVehicleNotFound: http.StatusNotFound,
	domain.ErrOrderNotFound:   http.StatusNotFound,

	domain.ErrMissingToken:       http.StatusUnauthorized,
	domain.ErrInvalidToken:       http.StatusUnauthorized,
	domain.ErrExpiredToken:       http.StatusUnauthorized,
	domain.ErrInvalidCredentials: http.StatusUnauthorized,
	domain.ErrAccountDisabled:    http.StatusUnauthorized,
	domain.ErrForbidden:          http.StatusForbidden,

	domain.ErrEmailTaken: http.StatusConflict,
	domain.ErrCPFTaken:   http.StatusConflict,

	domain.ErrVehicleNotForSale:  http.StatusBadRequest,
	domain.ErrVehicleAlreadySold: http.StatusConflict,
	domain.ErrVehicleSoldLocked:  http.StatusBadRequest,

	domain.ErrSelfPurchase:      http.StatusBadRequest,
	domain.ErrPriceBelowListing: http.StatusBadRequest,
	domain.ErrInvalidTransition: http.StatusBadRequest,

	domain.ErrVehicleServiceDown: http.StatusBadGateway,

	domain.ErrRateLimited: http.StatusTooManyRequests,
}

// ErrorBody is the JSON error envelope. Code is stable; Message is for
// humans and may change.
type ErrorBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

func statusFor(err error) int {
	for sentinel, status := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// Fail writes the error envelope for err and aborts the request.
func Fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := ErrorBody{Error: err.Error(), Code: domain.Code(err)}
	if status == http.StatusInternalServerError {
		// never leak internals to the client
		body.Error = domain.ErrInternal.Error()
		body.Code = domain.Code(domain.ErrInternal)
	}
	c.AbortWithStatusJSON(status, body)
}

// FailValidation reports field-level validation problems.
func FailValidation(c *gin.Context, details []string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
		Error:   domain.ErrValidation.Error(),
		Code:    domain.Code(domain.ErrValidation),
		Details: details,
	})
}
