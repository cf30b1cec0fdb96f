package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/globaledutech/payments/internal/gateway"
	paymentdomain "github.com/globaledutech/payments/internal/payment/domain"
)

type apiError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

func invalidRequestError() apiError {
	return apiError{Status: http.StatusBadRequest, Code: "invalid_request"}
}

// AbortWithError maps domain and gateway errors onto HTTP responses. Gateway
// HTTP errors surface the upstream status code and body for diagnostics.
func AbortWithError(c *gin.Context, err error) {
	var api apiError
	if errors.As(err, &api) {
		c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
		return
	}

	status := http.StatusInternalServerError
	code := "internal_error"
	detail := ""

	switch {
	case errors.Is(err, paymentdomain.ErrInvalidUser),
		errors.Is(err, paymentdomain.ErrInvalidProduct),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, paymentdomain.ErrInvalidID):
		status = http.StatusBadRequest
		code = err.Error()
	case errors.Is(err, paymentdomain.ErrNotFound):
		status = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, gateway.ErrMissingCredentials):
		status = http.StatusInternalServerError
		code = "gateway_credentials_missing"
	default:
		if gerr, ok := gateway.AsError(err); ok {
			switch gerr.Kind {
			case gateway.ErrorKindHTTP:
				status = gerr.StatusCode
				if status < 400 || status > 599 {
					status = http.StatusBadGateway
				}
				code = "gateway_error"
				detail = gerr.Body
			case gateway.ErrorKindTransport:
				status = http.StatusBadGateway
				code = "gateway_unreachable"
			case gateway.ErrorKindDecode:
				status = http.StatusBadGateway
				code = "gateway_bad_response"
			}
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"error": apiError{
		Status: status,
		Code:   code,
		Detail: detail,
	}})
}

func (e apiError) Error() string {
	return e.Code
}
