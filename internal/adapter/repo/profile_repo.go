package repo

import (
	"context"
	"fmt"

	"boostshop/internal/domain"
	"boostshop/internal/infra"
	"boostshop/internal/sqlinline"
)

// ProfileRepositoryPG implements domain.ProfileRepository on profiles.
type ProfileRepositoryPG struct {
	db infra.SQLExecutor
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db infra.SQLExecutor) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{db: db}
}

func (r *ProfileRepositoryPG) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	row := r.db.QueryRow(ctx, sqlinline.QSelectProfileByUserID, userID)
	if err := row.Scan(
		&p.UserID,
		&p.Username,
		&p.CurrentConnections,
		&p.TotalPurchasedConnections,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, fmt.Errorf("profile %s: %w", userID, domain.ErrNotFound)
		}
		return nil, storeErr("select profile", err)
	}
	return &p, nil
}

// Credit delegates to credit_connection_purchase, which claims credited_at and
// increments both counters in the same statement.
func (r *ProfileRepositoryPG) Credit(ctx context.Context, sessionID string) (*domain.CreditResult, error) {
	var res domain.CreditResult
	row := r.db.QueryRow(ctx, sqlinline.QCreditPurchase, sessionID)
	if err := row.Scan(
		&res.UserID,
		&res.ConnectionsAdded,
		&res.CurrentConnections,
		&res.TotalPurchasedConnections,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, nil
		}
		return nil, storeErr("credit purchase", err)
	}
	return &res, nil
}

var _ domain.ProfileRepository = (*ProfileRepositoryPG)(nil)
