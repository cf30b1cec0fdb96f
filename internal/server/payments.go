package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/globaledutech/payments/internal/payment/domain"
)

type createPaymentLinkRequest struct {
	UserID      string  `json:"user_id"`
	ProductType string  `json:"product_type"`
	ProductID   string  `json:"product_id"`
	Amount      float64 `json:"amount"`
}

func (s *Server) CreatePaymentLink(c *gin.Context) {
	var req createPaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.CreatePaymentLink(c.Request.Context(), paymentdomain.CreatePaymentLinkRequest{
		UserID:      strings.TrimSpace(req.UserID),
		ProductType: strings.TrimSpace(req.ProductType),
		ProductID:   strings.TrimSpace(req.ProductID),
		Amount:      req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Payment link created",
		"payment_id":   resp.PaymentID,
		"payment_link": resp.PaymentLink,
	})
}

type checkStatusRequest struct {
	PaymentID string `json:"payment_id"`
}

func (s *Server) CheckPaymentStatus(c *gin.Context) {
	var req checkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.CheckStatus(c.Request.Context(), strings.TrimSpace(req.PaymentID))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) UserPaymentHistory(c *gin.Context) {
	resp, err := s.paymentSvc.UserHistory(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) PaymentHistory(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"), 100)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	offset, err := parseOptionalInt(c.Query("offset"), 0)
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	startDate, err := parseOptionalTime(c.Query("start_date"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	endDate, err := parseOptionalTime(c.Query("end_date"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentSvc.History(c.Request.Context(), paymentdomain.HistoryRequest{
		Limit:       limit,
		Offset:      offset,
		Status:      paymentdomain.Status(strings.TrimSpace(c.Query("status"))),
		ProductType: strings.TrimSpace(c.Query("product_type")),
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) PaymentStats(c *gin.Context) {
	resp, err := s.paymentSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func parseOptionalInt(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
