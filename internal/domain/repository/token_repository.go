package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medportal/internal/common"
	"medportal/internal/domain/model"
)

type TokenRepository interface {
	// GetOrCreate stores candidateKey for the user unless a token already exists, and returns the stored token.
	GetOrCreate(ctx context.Context, userID, candidateKey string, now time.Time) (*model.Token, bool, error)
	FindUserIDByKey(ctx context.Context, key string) (string, error)
}

type pgTokenRepository struct {
	db *sql.DB
}

func NewPgTokenRepository(db *sql.DB) TokenRepository {
	return &pgTokenRepository{db: db}
}

func (r *pgTokenRepository) GetOrCreate(ctx context.Context, userID, candidateKey string, now time.Time) (*model.Token, bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO auth_tokens (token_key, user_id, created_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		candidateKey, userID, now)
	if err != nil {
		return nil, false, fmt.Errorf("pgTokenRepository.GetOrCreate insert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("pgTokenRepository.GetOrCreate rows: %w", err)
	}

	token := &model.Token{UserID: userID}
	err = r.db.QueryRowContext(ctx,
		`SELECT token_key, created_at FROM auth_tokens WHERE user_id = $1`, userID,
	).Scan(&token.Key, &token.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("pgTokenRepository.GetOrCreate select: %w", err)
	}
	return token, affected == 1, nil
}

func (r *pgTokenRepository) FindUserIDByKey(ctx context.Context, key string) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM auth_tokens WHERE token_key = $1`, key).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("pgTokenRepository.FindUserIDByKey: %w", err)
	}
	return userID, nil
}
