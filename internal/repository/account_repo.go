package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/model"
)

// AccountRepo reads the authoritative balance and trust figures from the
// wallet database. The local session score only approximates these; the
// two are never assumed to match exactly.
type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// GetStanding returns the server-side standing for an account, or nil
// when no database is configured or the account is unknown.
func (r *AccountRepo) GetStanding(ctx context.Context, accountID string) (*model.AccountStanding, error) {
	if r.pool == nil {
		return nil, nil
	}

	var st model.AccountStanding
	err := r.pool.QueryRow(ctx, `
		SELECT balance, trust_state, ups, account_type
		FROM accounts WHERE account_id = $1`,
		accountID).Scan(&st.Balance, &st.TrustState, &st.UPS, &st.AccountType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
