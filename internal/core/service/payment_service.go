package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/core/phone"
	"github.com/gurihub/payments/internal/core/receipt"
	"github.com/gurihub/payments/internal/port/input"
	"github.com/gurihub/payments/internal/port/output"
)

// planFor maps a payment method to the numbering plan its provider expects.
func planFor(method core.PaymentMethod) (phone.Plan, error) {
	switch method {
	case core.PaymentMethodMpesa:
		return phone.PlanKenya, nil
	case core.PaymentMethodEVC:
		return phone.PlanSomalia, nil
	default:
		return "", fmt.Errorf("unsupported payment method %q", method)
	}
}

// PaymentServiceImpl implements the PaymentService input port
type PaymentServiceImpl struct {
	paymentRepo output.PaymentRepository
	marketplace output.MarketplaceRepository
	pricingRepo output.PricingRepository
	gateways    map[core.PaymentMethod]output.PaymentGateway
	logger      *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo output.PaymentRepository,
	marketplace output.MarketplaceRepository,
	pricingRepo output.PricingRepository,
	gateways []output.PaymentGateway,
	logger *slog.Logger,
) input.PaymentService {
	byMethod := make(map[core.PaymentMethod]output.PaymentGateway, len(gateways))
	for _, gw := range gateways {
		byMethod[gw.Method()] = gw
	}
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		marketplace: marketplace,
		pricingRepo: pricingRepo,
		gateways:    byMethod,
		logger:      logger,
	}
}

// InitiatePayment runs the initiation workflow: validate, verify the user and
// property exist, resolve the price, call the provider, then persist a
// PENDING record. The record is created only after the provider acknowledges,
// so a gateway failure leaves no orphaned PENDING row.
func (s *PaymentServiceImpl) InitiatePayment(ctx context.Context, req input.InitiatePaymentRequest) (*input.InitiatePaymentResponse, error) {
	// Validate service type
	if !core.KnownServiceType(req.ServiceType) {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidServiceType, req.ServiceType)
	}

	// Validate and normalize the phone number against the provider's plan
	plan, err := planFor(req.Method)
	if err != nil {
		return nil, err
	}
	msisdn, err := phone.Normalize(req.PhoneNumber, plan)
	if err != nil {
		return nil, err
	}

	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", core.ErrUserNotFound)
	}

	// User and property lookups are independent; run them concurrently and
	// join before touching pricing or the provider.
	if err := s.verifyReferences(ctx, req.UserID, req.PropertyID); err != nil {
		return nil, err
	}

	// Resolve the price. The caller never supplies an amount.
	pricing, err := s.pricingRepo.GetActiveByServiceType(ctx, req.ServiceType)
	if err != nil {
		return nil, err
	}

	gw, ok := s.gateways[req.Method]
	if !ok {
		return nil, fmt.Errorf("no gateway registered for method %q", req.Method)
	}

	intent := output.PaymentIntent{
		PhoneNumber: msisdn,
		Amount:      pricing.Amount,
		Currency:    pricing.Currency,
		Reference:   receipt.Generate(),
		Description: pricing.ServiceName,
	}

	ack, err := gw.Initiate(ctx, intent)
	if err != nil {
		s.logger.Error("gateway initiation failed",
			"category", "gateway",
			"method", string(req.Method),
			"service_type", string(req.ServiceType),
			"error", err,
		)
		return nil, err
	}

	payment := &core.Payment{
		ID:              uuid.New(),
		TransactionID:   ack.TransactionID,
		Amount:          pricing.Amount,
		Currency:        pricing.Currency,
		PhoneNumber:     msisdn,
		ReceiptNumber:   intent.Reference,
		Method:          req.Method,
		ServiceType:     req.ServiceType,
		Status:          core.PaymentStatusPending,
		UserID:          req.UserID,
		PropertyID:      req.PropertyID,
		TransactionDate: time.Now(),
	}

	if err := s.paymentRepo.CreatePending(ctx, payment); err != nil {
		// The provider has accepted the push; losing the record here means
		// the later callback will not match anything. Log loudly.
		s.logger.Error("failed to persist pending payment after provider ack",
			"category", "storage",
			"transaction_id", ack.TransactionID,
			"receipt_number", intent.Reference,
			"error", err,
		)
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	s.logger.Info("payment initiated",
		"transaction_id", ack.TransactionID,
		"receipt_number", intent.Reference,
		"method", string(req.Method),
		"service_type", string(req.ServiceType),
		"amount", pricing.Amount.String(),
	)

	return &input.InitiatePaymentResponse{
		ReceiptNumber:    intent.Reference,
		TransactionID:    ack.TransactionID,
		Amount:           pricing.Amount,
		Currency:         pricing.Currency,
		ServiceType:      req.ServiceType,
		ServiceName:      pricing.ServiceName,
		Method:           req.Method,
		Status:           core.PaymentStatusPending,
		ProviderResponse: ack.Raw,
	}, nil
}

// verifyReferences checks the payer and, when supplied, the target property
// exist. The two lookups run in parallel.
func (s *PaymentServiceImpl) verifyReferences(ctx context.Context, userID uuid.UUID, propertyID *uuid.UUID) error {
	errs := make(chan error, 2)

	go func() {
		exists, err := s.marketplace.UserExists(ctx, userID)
		if err != nil {
			errs <- fmt.Errorf("failed to look up user: %w", err)
			return
		}
		if !exists {
			errs <- fmt.Errorf("%w: %s", core.ErrUserNotFound, userID)
			return
		}
		errs <- nil
	}()

	go func() {
		if propertyID == nil {
			errs <- nil
			return
		}
		exists, err := s.marketplace.PropertyExists(ctx, *propertyID)
		if err != nil {
			errs <- fmt.Errorf("failed to look up property: %w", err)
			return
		}
		if !exists {
			errs <- fmt.Errorf("%w: %s", core.ErrPropertyNotFound, *propertyID)
			return
		}
		errs <- nil
	}()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetPayment retrieves a payment by ID
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, id uuid.UUID) (*input.PaymentResponse, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &input.PaymentResponse{
		ID:            payment.ID,
		TransactionID: payment.TransactionID,
		ReceiptNumber: payment.ReceiptNumber,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PhoneNumber:   payment.PhoneNumber,
		Method:        payment.Method,
		ServiceType:   payment.ServiceType,
		Status:        payment.Status,
		CreatedAt:     payment.CreatedAt,
	}, nil
}
