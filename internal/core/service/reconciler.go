package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/port/input"
	"github.com/gurihub/payments/internal/port/output"
)

// Reconciler implements the CallbackService input port. It maps provider
// result codes to an internal status and applies it through the guarded
// repository transition, so a duplicate or conflicting callback can never
// re-write a terminal status.
type Reconciler struct {
	paymentRepo output.PaymentRepository
	events      output.PaymentEvents
	logger      *slog.Logger
}

// NewReconciler creates a new callback reconciler
func NewReconciler(
	paymentRepo output.PaymentRepository,
	events output.PaymentEvents,
	logger *slog.Logger,
) input.CallbackService {
	return &Reconciler{
		paymentRepo: paymentRepo,
		events:      events,
		logger:      logger,
	}
}

// ReconcileMpesa applies an M-Pesa STK callback. ResultCode 0 means the payer
// completed the push; every other code is a failure.
func (r *Reconciler) ReconcileMpesa(ctx context.Context, cb input.MpesaCallback) (*input.ReconcileResult, error) {
	if cb.CheckoutRequestID == "" {
		return nil, fmt.Errorf("%w: missing CheckoutRequestID", core.ErrMalformedCallback)
	}

	status := core.PaymentStatusFailed
	if cb.ResultCode == 0 {
		status = core.PaymentStatusCompleted
	}

	r.logger.Info("mpesa callback received",
		"transaction_id", cb.CheckoutRequestID,
		"result_code", cb.ResultCode,
		"result_desc", cb.ResultDesc,
	)
	return r.apply(ctx, cb.CheckoutRequestID, status)
}

// ReconcileEVC applies a WAAFI/EVC callback. The provider reports the final
// outcome as a free-cased status string.
func (r *Reconciler) ReconcileEVC(ctx context.Context, cb input.EVCCallback) (*input.ReconcileResult, error) {
	if cb.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transactionId", core.ErrMalformedCallback)
	}

	status := core.PaymentStatusFailed
	if strings.EqualFold(cb.Status, "success") {
		status = core.PaymentStatusCompleted
	}

	r.logger.Info("evc callback received",
		"transaction_id", cb.TransactionID,
		"status", cb.Status,
		"response_code", cb.ResponseCode,
	)
	return r.apply(ctx, cb.TransactionID, status)
}

// apply performs the guarded PENDING-to-terminal transition and, when the
// transition took effect, publishes a reconciliation event. Event publishing
// is best-effort: its failure never rolls back the transition.
func (r *Reconciler) apply(ctx context.Context, transactionID string, status core.PaymentStatus) (*input.ReconcileResult, error) {
	err := r.paymentRepo.UpdateStatus(ctx, transactionID, status)
	switch {
	case err == nil:
		// fall through to event publishing
	case errors.Is(err, core.ErrAlreadyReconciled):
		// Duplicate delivery; the first callback won. No-op.
		r.logger.Warn("callback for already reconciled payment",
			"transaction_id", transactionID,
			"requested_status", string(status),
		)
		return &input.ReconcileResult{
			TransactionID: transactionID,
			Status:        status,
			Applied:       false,
		}, nil
	case errors.Is(err, core.ErrUnknownTransaction):
		return nil, err
	default:
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	r.publishEvent(ctx, transactionID, status)

	return &input.ReconcileResult{
		TransactionID: transactionID,
		Status:        status,
		Applied:       true,
	}, nil
}

func (r *Reconciler) publishEvent(ctx context.Context, transactionID string, status core.PaymentStatus) {
	payment, err := r.paymentRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		r.logger.Error("failed to load payment for event publishing",
			"category", "storage",
			"transaction_id", transactionID,
			"error", err,
		)
		return
	}

	event := output.ReconciliationEvent{
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		ReceiptNumber: payment.ReceiptNumber,
		Method:        payment.Method,
		Status:        status,
		Amount:        payment.Amount.String(),
		Currency:      payment.Currency,
		PhoneNumber:   payment.PhoneNumber,
		OccurredAt:    time.Now(),
	}

	if err := r.events.PublishReconciliationEvent(event); err != nil {
		r.logger.Error("failed to publish reconciliation event",
			"category", "messaging",
			"transaction_id", transactionID,
			"error", err,
		)
		return
	}

	r.logger.Info("payment reconciled",
		"transaction_id", transactionID,
		"status", string(status),
	)
}
