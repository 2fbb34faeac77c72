package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medportal/internal/common"
	"medportal/internal/domain/model"
)

type ProfileRepository interface {
	Create(ctx context.Context, tx *sql.Tx, profile model.RoleProfile) error
	FindByUserID(ctx context.Context, userID string) (model.RoleProfile, error)
}

type pgProfileRepository struct {
	db *sql.DB
}

func NewPgProfileRepository(db *sql.DB) ProfileRepository {
	return &pgProfileRepository{db: db}
}

func profileTable(p model.RoleProfile) (string, error) {
	switch p.(type) {
	case *model.PatientProfile:
		return "patients", nil
	case *model.DoctorProfile:
		return "doctors", nil
	default:
		return "", fmt.Errorf("unsupported profile type %T", p)
	}
}

func (r *pgProfileRepository) Create(ctx context.Context, tx *sql.Tx, p model.RoleProfile) error {
	table, err := profileTable(p)
	if err != nil {
		return err
	}
	b := p.Base()
	query := `INSERT INTO ` + table + ` (id, user_id, created_at, updated_at) VALUES ($1, $2, $3, $4)`

	if _, err := on(r.db, tx).ExecContext(ctx, query, b.ID, b.UserID, b.CreatedAt, b.UpdatedAt); err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("pgProfileRepository.Create %s: %w", table, err)
	}
	return nil
}

// FindByUserID returns whichever profile variant the user owns.
func (r *pgProfileRepository) FindByUserID(ctx context.Context, userID string) (model.RoleProfile, error) {
	candidates := []model.RoleProfile{&model.PatientProfile{}, &model.DoctorProfile{}}
	for _, p := range candidates {
		table, _ := profileTable(p)
		b := p.Base()
		err := r.db.QueryRowContext(ctx,
			`SELECT id, user_id, created_at, updated_at FROM `+table+` WHERE user_id = $1`, userID,
		).Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pgProfileRepository.FindByUserID %s: %w", table, err)
		}
	}
	return nil, common.ErrNotFound
}
