package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"medportal/internal/common"
	"medportal/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, tx *sql.Tx, user *model.User) error
	CreateAddress(ctx context.Context, tx *sql.Tx, address *model.Address) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, int, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.role,
       u.is_active, u.profile_picture, u.created_at, u.updated_at,
       a.id, a.line1, a.city, a.state, a.pincode, a.created_at, a.updated_at`

const userFrom = ` FROM users u LEFT JOIN addresses a ON a.user_id = u.id`

func (r *pgUserRepository) Create(ctx context.Context, tx *sql.Tx, user *model.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, first_name, last_name, role,
	                             is_active, profile_picture, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := on(r.db, tx).ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.FirstName, user.LastName,
		string(user.Role), user.IsActive, user.ProfilePicture, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) CreateAddress(ctx context.Context, tx *sql.Tx, a *model.Address) error {
	query := `INSERT INTO addresses (id, user_id, line1, city, state, pincode, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := on(r.db, tx).ExecContext(ctx, query,
		a.ID, a.UserID, a.Line1, a.City, a.State, a.Pincode, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("pgUserRepository.CreateAddress: %w", err)
	}
	return nil
}

func (r *pgUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *pgUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *pgUserRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("pgUserRepository.exists: %w", err)
	}
	return found, nil
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+userFrom+` WHERE u.username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+userFrom+` WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

var userOrderClauses = map[model.UserOrdering]string{
	model.OrderCreatedAtAsc:  "u.created_at ASC, u.id ASC",
	model.OrderCreatedAtDesc: "u.created_at DESC, u.id DESC",
	model.OrderUsernameAsc:   "u.username ASC",
	model.OrderUsernameDesc:  "u.username DESC",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *pgUserRepository) List(ctx context.Context, f model.UserFilter) ([]model.User, int, error) {
	var conditions []string
	var args []interface{}
	argID := 1

	if f.Role != nil {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argID))
		args = append(args, string(*f.Role))
		argID++
	}

	if f.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("u.is_active = $%d", argID))
		args = append(args, *f.IsActive)
		argID++
	}

	if f.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("u.created_at >= $%d", argID))
		args = append(args, f.CreatedAfter.UTC())
		argID++
	}

	if f.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("u.created_at < $%d", argID))
		args = append(args, f.CreatedBefore.UTC())
		argID++
	}

	if term := strings.TrimSpace(f.Search); term != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(LOWER(u.username) LIKE $%[1]d ESCAPE '\' OR LOWER(u.email) LIKE $%[1]d ESCAPE '\'
			  OR LOWER(u.first_name) LIKE $%[1]d ESCAPE '\' OR LOWER(u.last_name) LIKE $%[1]d ESCAPE '\')`, argID))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
		argID++
	}

	var where string
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List count: %w", err)
	}

	order, ok := userOrderClauses[f.Ordering]
	if !ok {
		order = userOrderClauses[model.DefaultUserOrdering]
	}

	var query strings.Builder
	query.WriteString(`SELECT ` + userColumns + userFrom + where)
	query.WriteString(" ORDER BY " + order)
	if f.Limit > 0 {
		query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argID, argID+1))
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}

	return users, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u       model.User
		role    string
		picture sql.NullString

		addrID, line1, city, state, pincode sql.NullString
		addrCreated, addrUpdated            sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.FirstName, &u.LastName, &role,
		&u.IsActive, &picture, &u.CreatedAt, &u.UpdatedAt,
		&addrID, &line1, &city, &state, &pincode, &addrCreated, &addrUpdated,
	)
	if err != nil {
		return nil, err
	}

	u.Role = model.Role(role)
	if picture.Valid {
		u.ProfilePicture = &picture.String
	}
	if addrID.Valid {
		u.Address = &model.Address{
			ID:        addrID.String,
			UserID:    u.ID,
			Line1:     line1.String,
			City:      city.String,
			State:     state.String,
			Pincode:   pincode.String,
			CreatedAt: addrCreated.Time,
			UpdatedAt: addrUpdated.Time,
		}
	}
	return &u, nil
}
