package http_api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/openkassa/kassaterm/internal/models"
	"github.com/openkassa/kassaterm/internal/provider"
	"github.com/openkassa/kassaterm/internal/terminal"
)

// VerifyRequest represents the JSON body for credential verification
type VerifyRequest struct {
	AccessKey     string `json:"access_key" binding:"required"`
	CurrencyCode  string `json:"currency_code" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	ClientID      string `json:"client_id" binding:"required"`
	AccountGUID   string `json:"account_guid" binding:"required"`
	MerchantName  string `json:"merchant_name"`
	ClientSecret  string `json:"client_secret"`
}

// CreatePaymentRequest represents the JSON body for payment creation
type CreatePaymentRequest struct {
	Amount      decimal.Decimal          `json:"amount" binding:"required"`
	Description string                   `json:"description"`
	Items       []models.TransactionItem `json:"items"`
}

// RefreshHistoryRequest selects the history window to reconcile
type RefreshHistoryRequest struct {
	DateFrom string `json:"date_from" binding:"required"`
	DateTo   string `json:"date_to" binding:"required"`
}

// ImportProductsRequest carries the newline-delimited "name, price" blob
type ImportProductsRequest struct {
	Text string `json:"text" binding:"required"`
}

// WithdrawalRequest represents the JSON body for a withdrawal request
type WithdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Comment string          `json:"comment"`
}

// respondError maps service errors onto HTTP statuses. A remote API
// error keeps its message and raw body so the UI can show diagnostics.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	if errors.Is(err, terminal.ErrNotVerified) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
		return
	}
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"success":      false,
			"error":        apiErr.Message,
			"http_status":  apiErr.StatusCode,
			"raw_response": apiErr.RawBody,
		})
		return
	}
	s.logger.Error("Request failed: ", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
}

func (s *HTTPServer) verifyCredentials(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	creds := &models.Credentials{
		AccessKey:     req.AccessKey,
		CurrencyCode:  req.CurrencyCode,
		AccountNumber: req.AccountNumber,
		ClientID:      req.ClientID,
		AccountGUID:   req.AccountGUID,
		MerchantName:  req.MerchantName,
		ClientSecret:  req.ClientSecret,
	}

	result, err := s.terminal.VerifyCredentials(c.Request.Context(), creds)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !result.Success {
		// The result already carries the failed step count, the short
		// message and the raw response for debugging.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (s *HTTPServer) verificationState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": s.terminal.VerificationState()})
}

func (s *HTTPServer) logout(c *gin.Context) {
	if err := s.terminal.Logout(); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) accountBalance(c *gin.Context) {
	balance, err := s.terminal.AccountBalance(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (s *HTTPServer) customerBalance(c *gin.Context) {
	balance, err := s.terminal.CustomerBalance(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (s *HTTPServer) createPayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	transaction, err := s.terminal.CreatePayment(c.Request.Context(), req.Amount, req.Description, req.Items)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (s *HTTPServer) listPayments(c *gin.Context) {
	transactions, err := s.terminal.ListTransactions()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(transactions), "items": transactions})
}

func (s *HTTPServer) refreshPayment(c *gin.Context) {
	transaction, err := s.terminal.RefreshPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (s *HTTPServer) refreshHistory(c *gin.Context) {
	var req RefreshHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	count, err := s.terminal.RefreshHistory(c.Request.Context(), req.DateFrom, req.DateTo)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reconciled": count})
}

func (s *HTTPServer) listProducts(c *gin.Context) {
	products, err := s.terminal.ListProducts()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "items": products})
}

func (s *HTTPServer) addProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	if err := s.terminal.AddProduct(&product); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *HTTPServer) updateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}
	product.ID = c.Param("id")

	if err := s.terminal.UpdateProduct(&product); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *HTTPServer) deleteProduct(c *gin.Context) {
	if err := s.terminal.DeleteProduct(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *HTTPServer) importProducts(c *gin.Context) {
	var req ImportProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := s.terminal.ImportProducts(req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	// Line errors are part of the result, not a failure of the call.
	c.JSON(http.StatusOK, result)
}

func (s *HTTPServer) requestWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	withdrawal, err := s.terminal.RequestWithdrawal(c.Request.Context(), req.Amount, req.Comment)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawal)
}

func (s *HTTPServer) exchangeRates(c *gin.Context) {
	c.JSON(http.StatusOK, s.rates.Snapshot())
}
