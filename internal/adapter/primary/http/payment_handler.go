package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/port/input"
)

// PaymentHandler is a primary adapter (HTTP handler)
type PaymentHandler struct {
	paymentService  input.PaymentService
	callbackService input.CallbackService
	logger          *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService input.PaymentService, callbackService input.CallbackService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService:  paymentService,
		callbackService: callbackService,
		logger:          logger,
	}
}

// Register wires the handler's routes onto an echo group
func (h *PaymentHandler) Register(g *echo.Group) {
	g.POST("/payments/mpesa/stkpush", h.InitiateMpesa)
	g.POST("/payments/evc/payment", h.InitiateEVC)
	g.POST("/payments/callbacks/mpesa", h.MpesaCallback)
	g.POST("/payments/callbacks/evc", h.EVCCallback)
	g.GET("/payments/:id", h.GetPayment)
}

// Envelope is the uniform response body shared by every endpoint.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError reports a validation failure on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ok(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string, fieldErrs ...FieldError) error {
	return c.JSON(status, Envelope{Success: false, Message: message, Errors: fieldErrs})
}

// InitiatePaymentRequest represents the HTTP request to initiate a payment
type InitiatePaymentRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	UserID      string `json:"userId"`
	PropertyID  string `json:"propertyId"`
	ServiceType string `json:"serviceType"`
}

// InitiatePaymentResponse represents the HTTP response for an accepted initiation
type InitiatePaymentResponse struct {
	ReceiptNumber    string                 `json:"receiptNumber"`
	TransactionID    string                 `json:"transactionId"`
	Amount           string                 `json:"amount"`
	Currency         string                 `json:"currency"`
	ServiceType      string                 `json:"serviceType"`
	ServiceName      string                 `json:"serviceName"`
	Status           string                 `json:"status"`
	ProviderResponse map[string]interface{} `json:"providerResponse,omitempty"`
}

// InitiateMpesa handles M-Pesa STK Push initiation
func (h *PaymentHandler) InitiateMpesa(c echo.Context) error {
	return h.initiate(c, core.PaymentMethodMpesa)
}

// InitiateEVC handles WAAFI/EVC Plus initiation
func (h *PaymentHandler) InitiateEVC(c echo.Context) error {
	return h.initiate(c, core.PaymentMethodEVC)
}

func (h *PaymentHandler) initiate(c echo.Context, method core.PaymentMethod) error {
	var req InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	var fieldErrs []FieldError
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fieldErrs = append(fieldErrs, FieldError{Field: "userId", Message: "must be a valid UUID"})
	}
	var propertyID *uuid.UUID
	if req.PropertyID != "" {
		pid, err := uuid.Parse(req.PropertyID)
		if err != nil {
			fieldErrs = append(fieldErrs, FieldError{Field: "propertyId", Message: "must be a valid UUID"})
		} else {
			propertyID = &pid
		}
	}
	if req.PhoneNumber == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "phoneNumber", Message: "is required"})
	}
	if req.ServiceType == "" {
		fieldErrs = append(fieldErrs, FieldError{Field: "serviceType", Message: "is required"})
	}
	if len(fieldErrs) > 0 {
		return fail(c, http.StatusBadRequest, "Validation failed", fieldErrs...)
	}

	serviceReq := input.InitiatePaymentRequest{
		PhoneNumber: req.PhoneNumber,
		UserID:      userID,
		PropertyID:  propertyID,
		ServiceType: core.ServiceType(req.ServiceType),
		Method:      method,
	}

	resp, err := h.paymentService.InitiatePayment(c.Request().Context(), serviceReq)
	if err != nil {
		return h.initiationError(c, method, err)
	}

	return ok(c, "Payment initiated. Complete the prompt on your phone.", InitiatePaymentResponse{
		ReceiptNumber:    resp.ReceiptNumber,
		TransactionID:    resp.TransactionID,
		Amount:           resp.Amount.StringFixed(2),
		Currency:         resp.Currency,
		ServiceType:      string(resp.ServiceType),
		ServiceName:      resp.ServiceName,
		Status:           string(resp.Status),
		ProviderResponse: resp.ProviderResponse,
	})
}

// initiationError maps workflow errors onto HTTP statuses. Gateway and
// configuration failures are logged with their category but reported to the
// caller with a generic message; payment endpoints never leak internals.
func (h *PaymentHandler) initiationError(c echo.Context, method core.PaymentMethod, err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidPhoneNumber):
		return fail(c, http.StatusBadRequest, "Validation failed",
			FieldError{Field: "phoneNumber", Message: "does not match the provider's numbering plan"})
	case errors.Is(err, core.ErrInvalidServiceType):
		return fail(c, http.StatusBadRequest, "Validation failed",
			FieldError{Field: "serviceType", Message: "is not a recognized service type"})
	case errors.Is(err, core.ErrPricingNotFound):
		return fail(c, http.StatusBadRequest, "No active pricing for the requested service type")
	case errors.Is(err, core.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, core.ErrPropertyNotFound):
		return fail(c, http.StatusNotFound, "Property not found")
	}

	var confErr *core.ConfigurationError
	if errors.As(err, &confErr) {
		h.logger.Error("payment initiation failed",
			"category", "configuration",
			"method", string(method),
			"error", err,
		)
		return fail(c, http.StatusInternalServerError, "Payment provider is not configured")
	}

	var gwErr *core.GatewayError
	if errors.As(err, &gwErr) {
		h.logger.Error("payment initiation failed",
			"category", "gateway",
			"method", string(method),
			"error", err,
		)
		return fail(c, http.StatusInternalServerError, "Payment provider rejected the request")
	}

	h.logger.Error("payment initiation failed",
		"category", "internal",
		"method", string(method),
		"error", err,
	)
	return fail(c, http.StatusInternalServerError, "Failed to initiate payment")
}

// mpesaCallbackEnvelope mirrors the STK callback body the provider posts.
type mpesaCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  *struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// MpesaCallback consumes the asynchronous STK Push result. Internal
// reconciliation anomalies (unknown transaction, duplicate delivery) are
// logged and acknowledged with 200 so the provider does not retry-storm us.
func (h *PaymentHandler) MpesaCallback(c echo.Context) error {
	var env mpesaCallbackEnvelope
	if err := c.Bind(&env); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid callback body")
	}

	stk := env.Body.StkCallback
	cb := input.MpesaCallback{
		MerchantRequestID: stk.MerchantRequestID,
		CheckoutRequestID: stk.CheckoutRequestID,
		ResultCode:        stk.ResultCode,
		ResultDesc:        stk.ResultDesc,
	}
	if stk.CallbackMetadata != nil {
		for _, item := range stk.CallbackMetadata.Item {
			cb.Metadata = append(cb.Metadata, input.MpesaCallbackItem{Name: item.Name, Value: item.Value})
		}
	}

	result, err := h.callbackService.ReconcileMpesa(c.Request().Context(), cb)
	return h.callbackResponse(c, "mpesa", cb.CheckoutRequestID, result, err)
}

// evcCallbackRequest mirrors the flat WAAFI callback body.
type evcCallbackRequest struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	PhoneNumber   string `json:"phoneNumber"`
	ResponseCode  string `json:"responseCode"`
	ResponseMsg   string `json:"responseMsg"`
	ReceiptNumber string `json:"receiptNumber"`
}

// EVCCallback consumes the asynchronous WAAFI/EVC result.
func (h *PaymentHandler) EVCCallback(c echo.Context) error {
	var req evcCallbackRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid callback body")
	}

	cb := input.EVCCallback{
		TransactionID: req.TransactionID,
		Status:        req.Status,
		Amount:        req.Amount,
		PhoneNumber:   req.PhoneNumber,
		ResponseCode:  req.ResponseCode,
		ResponseMsg:   req.ResponseMsg,
		ReceiptNumber: req.ReceiptNumber,
	}

	result, err := h.callbackService.ReconcileEVC(c.Request().Context(), cb)
	return h.callbackResponse(c, "evc", cb.TransactionID, result, err)
}

func (h *PaymentHandler) callbackResponse(c echo.Context, provider, transactionID string, result *input.ReconcileResult, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, core.ErrMalformedCallback):
			h.logger.Warn("callback missing transaction identifier",
				"category", "reconciliation",
				"provider", provider,
			)
			// Parseable but unusable; acknowledge so the provider does not
			// retry a payload that can never reconcile.
			return ok(c, "Callback received", map[string]string{"status": "MALFORMED"})
		case errors.Is(err, core.ErrUnknownTransaction):
			h.logger.Warn("callback for unknown transaction",
				"category", "reconciliation",
				"provider", provider,
				"transaction_id", transactionID,
			)
			// Acknowledge so the provider stops retrying a callback we can
			// never match.
			return ok(c, "Callback received", map[string]string{"status": "UNKNOWN"})
		default:
			h.logger.Error("callback reconciliation failed",
				"category", "reconciliation",
				"provider", provider,
				"transaction_id", transactionID,
				"error", err,
			)
			return ok(c, "Callback received", map[string]string{"status": "ERROR"})
		}
	}

	return ok(c, "Callback processed", map[string]string{"status": string(result.Status)})
}

// GetPaymentResponse represents the HTTP response for a payment lookup
type GetPaymentResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	ReceiptNumber string `json:"receiptNumber"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PhoneNumber   string `json:"phoneNumber"`
	Method        string `json:"method"`
	ServiceType   string `json:"serviceType"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

// GetPayment handles payment retrieval by internal ID
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Validation failed",
			FieldError{Field: "id", Message: "must be a valid UUID"})
	}

	resp, err := h.paymentService.GetPayment(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrPaymentNotFound) {
			return fail(c, http.StatusNotFound, "Payment not found")
		}
		h.logger.Error("payment lookup failed", "category", "storage", "payment_id", id, "error", err)
		return fail(c, http.StatusInternalServerError, "Failed to retrieve payment")
	}

	return ok(c, "Payment retrieved", GetPaymentResponse{
		ID:            resp.ID.String(),
		TransactionID: resp.TransactionID,
		ReceiptNumber: resp.ReceiptNumber,
		Amount:        resp.Amount.StringFixed(2),
		Currency:      resp.Currency,
		PhoneNumber:   resp.PhoneNumber,
		Method:        string(resp.Method),
		ServiceType:   string(resp.ServiceType),
		Status:        string(resp.Status),
		CreatedAt:     resp.CreatedAt.UTC().Format(time.RFC3339),
	})
}
