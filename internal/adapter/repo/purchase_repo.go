package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"boostshop/internal/domain"
	"boostshop/internal/infra"
	"boostshop/internal/sqlinline"
)

// PurchaseRepositoryPG implements domain.PurchaseRepository on connection_purchases.
type PurchaseRepositoryPG struct {
	db infra.SQLExecutor
}

// NewPurchaseRepository constructs the repository.
func NewPurchaseRepository(db infra.SQLExecutor) *PurchaseRepositoryPG {
	return &PurchaseRepositoryPG{db: db}
}

// CreatePending inserts a pending row. The id is generated when empty.
func (r *PurchaseRepositoryPG) CreatePending(ctx context.Context, p *domain.Purchase) error {
	if p == nil || p.SessionID == "" || p.UserID == "" {
		return fmt.Errorf("%w: purchase needs a session and a user", domain.ErrInvalidRequest)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.db.QueryRow(ctx, sqlinline.QInsertPurchase,
		p.ID,
		p.UserID,
		p.PackageType,
		p.Connections,
		p.Amount.String(),
		p.Currency,
		p.SessionID,
		p.Country,
	)
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if infra.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSession, p.SessionID)
		}
		return storeErr("insert purchase", err)
	}
	p.Status = domain.PurchaseStatusPending
	return nil
}

// GetBySessionID returns domain.ErrSessionNotFound when no row matches.
func (r *PurchaseRepositoryPG) GetBySessionID(ctx context.Context, sessionID string) (*domain.Purchase, error) {
	p, err := scanPurchase(r.db.QueryRow(ctx, sqlinline.QSelectPurchaseBySession, sessionID))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
		}
		return nil, storeErr("select purchase", err)
	}
	return p, nil
}

// MarkPaid performs the pending to paid transition as one conditional update.
// When the update matches nothing the row is read back to tell an earlier
// transition apart from a missing or otherwise terminal row.
func (r *PurchaseRepositoryPG) MarkPaid(ctx context.Context, sessionID string, providerPayload []byte) (*domain.Purchase, bool, error) {
	var payload any
	if len(providerPayload) > 0 {
		payload = string(providerPayload)
	}
	p, err := scanPurchase(r.db.QueryRow(ctx, sqlinline.QMarkPurchasePaid, sessionID, payload))
	if err == nil {
		return p, true, nil
	}
	if !infra.IsNoRows(err) {
		return nil, false, storeErr("mark purchase paid", err)
	}

	existing, err := r.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if existing.Status == domain.PurchaseStatusPaid {
		return existing, false, nil
	}
	return existing, false, fmt.Errorf("%w: %s is %s", domain.ErrInvalidTransition, sessionID, existing.Status)
}

// ListUncredited returns paid purchases whose credit has not been applied,
// oldest first.
func (r *PurchaseRepositoryPG) ListUncredited(ctx context.Context, limit int) ([]domain.Purchase, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, sqlinline.QListUncreditedPurchases, limit)
	if err != nil {
		return nil, storeErr("list uncredited purchases", err)
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, storeErr("scan purchase", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list uncredited purchases", err)
	}
	return out, nil
}

func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var (
		p      domain.Purchase
		amount string
		status string
	)
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.PackageType,
		&p.Connections,
		&amount,
		&p.Currency,
		&p.SessionID,
		&status,
		&p.Country,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.PaidAt,
		&p.CreditedAt,
	); err != nil {
		return nil, err
	}
	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("purchase %s amount %q", p.SessionID, amount), err)
	}
	p.Amount = dec
	p.Status = domain.PurchaseStatus(status)
	return &p, nil
}

var _ domain.PurchaseRepository = (*PurchaseRepositoryPG)(nil)
