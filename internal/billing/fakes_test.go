package billing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"boostshop/internal/domain"
	"boostshop/internal/payment"
)

// memStore is an in-memory ledger and profile table with the same atomicity
// as the Postgres implementation: every method runs under one lock.
type memStore struct {
	mu        sync.Mutex
	purchases map[string]*domain.Purchase
	profiles  map[string]*domain.Profile

	insertErr error
	creditErr error
	credits   int
}

func newMemStore(profiles ...domain.Profile) *memStore {
	s := &memStore{
		purchases: map[string]*domain.Purchase{},
		profiles:  map[string]*domain.Profile{},
	}
	for i := range profiles {
		p := profiles[i]
		s.profiles[p.UserID] = &p
	}
	return s
}

func (s *memStore) CreatePending(_ context.Context, p *domain.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, ok := s.purchases[p.SessionID]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateSession, p.SessionID)
	}
	cp := *p
	cp.Status = domain.PurchaseStatusPending
	cp.CreatedAt = time.Now()
	s.purchases[p.SessionID] = &cp
	p.Status = cp.Status
	return nil
}

func (s *memStore) GetBySessionID(_ context.Context, sessionID string) (*domain.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) MarkPaid(_ context.Context, sessionID string, _ []byte) (*domain.Purchase, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[sessionID]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	switch p.Status {
	case domain.PurchaseStatusPending:
		now := time.Now()
		p.Status = domain.PurchaseStatusPaid
		p.PaidAt = &now
		cp := *p
		return &cp, true, nil
	case domain.PurchaseStatusPaid:
		cp := *p
		return &cp, false, nil
	}
	return nil, false, domain.ErrInvalidTransition
}

func (s *memStore) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) Credit(_ context.Context, sessionID string) (*domain.CreditResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creditErr != nil {
		return nil, s.creditErr
	}
	p, ok := s.purchases[sessionID]
	if !ok || p.Status != domain.PurchaseStatusPaid || p.CreditedAt != nil {
		return nil, nil
	}
	prof, ok := s.profiles[p.UserID]
	if !ok {
		return nil, errors.New("profile not found")
	}
	now := time.Now()
	p.CreditedAt = &now
	prof.CurrentConnections += p.Connections
	prof.TotalPurchasedConnections += p.Connections
	s.credits++
	return &domain.CreditResult{
		UserID:                    prof.UserID,
		ConnectionsAdded:          p.Connections,
		CurrentConnections:        prof.CurrentConnections,
		TotalPurchasedConnections: prof.TotalPurchasedConnections,
	}, nil
}

func (s *memStore) profile(userID string) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.profiles[userID]
}

func (s *memStore) purchase(sessionID string) (domain.Purchase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[sessionID]
	if !ok {
		return domain.Purchase{}, false
	}
	return *p, true
}

// fakeProvider hands out sequential session ids and reports whatever payment
// status the test sets.
type fakeProvider struct {
	mu        sync.Mutex
	seq       int
	statuses  map[string]string
	expired   []string
	createErr error
	getErr    error
	getDelay  time.Duration
	gets      int
	lastReq   payment.CheckoutRequest
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{statuses: map[string]string{}}
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	id := fmt.Sprintf("cs_test_%d", f.seq)
	f.statuses[id] = "unpaid"
	f.lastReq = req
	return &payment.CheckoutSession{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (f *fakeProvider) RetrieveSession(ctx context.Context, sessionID string) (*payment.SessionStatus, error) {
	f.mu.Lock()
	f.gets++
	delay, getErr := f.getDelay, f.getErr
	status, ok := f.statuses[sessionID]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if getErr != nil {
		return nil, getErr
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return &payment.SessionStatus{ID: sessionID, PaymentStatus: status, Status: "complete", Raw: []byte(`{}`)}, nil
}

func (f *fakeProvider) ExpireSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, sessionID)
	f.statuses[sessionID] = "unpaid"
	return nil
}

func (f *fakeProvider) setStatus(sessionID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[sessionID] = status
}
