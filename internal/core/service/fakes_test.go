package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/gurihub/payments/internal/core"
	"github.com/gurihub/payments/internal/port/output"
)

// In-memory fakes for the output ports, with call counters so tests can
// assert side-effect ordering (no gateway call after a failed lookup, no
// record after a failed gateway call).

type fakePaymentRepo struct {
	mu          sync.Mutex
	byTxn       map[string]*core.Payment
	createCalls int
	createErr   error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byTxn: make(map[string]*core.Payment)}
}

func (f *fakePaymentRepo) CreatePending(_ context.Context, p *core.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.byTxn[p.TransactionID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id uuid.UUID) (*core.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byTxn {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, core.ErrPaymentNotFound
}

func (f *fakePaymentRepo) GetByTransactionID(_ context.Context, txn string) (*core.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTxn[txn]
	if !ok {
		return nil, core.ErrUnknownTransaction
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentRepo) UpdateStatus(_ context.Context, txn string, status core.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTxn[txn]
	if !ok {
		return core.ErrUnknownTransaction
	}
	if p.Status != core.PaymentStatusPending {
		return fmt.Errorf("%w: current status is %s", core.ErrAlreadyReconciled, p.Status)
	}
	p.Status = status
	return nil
}

type fakeMarketplace struct {
	mu            sync.Mutex
	users         map[uuid.UUID]bool
	properties    map[uuid.UUID]bool
	userCalls     int
	propertyCalls int
}

func newFakeMarketplace() *fakeMarketplace {
	return &fakeMarketplace{
		users:      make(map[uuid.UUID]bool),
		properties: make(map[uuid.UUID]bool),
	}
}

func (f *fakeMarketplace) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	return f.users[id], nil
}

func (f *fakeMarketplace) PropertyExists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.propertyCalls++
	return f.properties[id], nil
}

type fakePricing struct {
	rows map[core.ServiceType]*core.ServicePricing
}

func (f *fakePricing) GetActiveByServiceType(_ context.Context, st core.ServiceType) (*core.ServicePricing, error) {
	row, ok := f.rows[st]
	if !ok || !row.Active {
		return nil, fmt.Errorf("%w: %s", core.ErrPricingNotFound, st)
	}
	return row, nil
}

type fakeGateway struct {
	mu     sync.Mutex
	method core.PaymentMethod
	ack    *output.ProviderAck
	err    error
	calls  int
}

func (f *fakeGateway) Method() core.PaymentMethod { return f.method }

func (f *fakeGateway) Initiate(_ context.Context, _ output.PaymentIntent) (*output.ProviderAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.ack, nil
}

type fakeEvents struct {
	mu         sync.Mutex
	published  []output.ReconciliationEvent
	publishErr error
}

func (f *fakeEvents) PublishReconciliationEvent(e output.ReconciliationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, e)
	return nil
}

func (f *fakeEvents) Close() error { return nil }
