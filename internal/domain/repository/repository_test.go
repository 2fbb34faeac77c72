package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"medportal/internal/common"
	"medportal/internal/domain/model"
	"medportal/internal/platform/database/dbtest"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, db *sql.DB, username string, role model.Role, createdAt time.Time) *model.User {
	t.Helper()
	ctx := context.Background()
	repo := NewPgUserRepository(db)

	u := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: "hash",
		FirstName:      "First " + username,
		LastName:       "Last",
		Role:           role,
		IsActive:       true,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, repo.Create(ctx, nil, u))
	require.NoError(t, repo.CreateAddress(ctx, nil, &model.Address{
		ID: uuid.NewString(), UserID: u.ID, Line1: "1 Main St", City: "Pune", State: "MH", Pincode: "411001",
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}))
	return u
}

func TestUserRepositoryFindLoadsAddress(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewPgUserRepository(db)
	created := seedUser(t, db, "jane", model.RolePatient, base)

	byName, err := repo.FindByUsername(ctx, "jane")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)
	require.Equal(t, model.RolePatient, byName.Role)
	require.True(t, byName.IsActive)
	require.Nil(t, byName.ProfilePicture)
	require.NotNil(t, byName.Address)
	require.Equal(t, "411001", byName.Address.Pincode)
	require.True(t, base.Equal(byName.CreatedAt))

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "jane", byID.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUserRepositoryExists(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewPgUserRepository(db)
	seedUser(t, db, "jane", model.RolePatient, base)

	ok, err := repo.ExistsByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ExistsByUsername(ctx, "john")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUserRepositoryListFilters(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewPgUserRepository(db)

	seedUser(t, db, "alice", model.RolePatient, base)
	seedUser(t, db, "bob", model.RoleDoctor, base.Add(24*time.Hour))
	seedUser(t, db, "carol", model.RoleDoctor, base.Add(48*time.Hour))
	_, err := db.Exec(`UPDATE users SET is_active = $1 WHERE username = $2`, false, "carol")
	require.NoError(t, err)

	t.Run("default ordering newest first", func(t *testing.T) {
		users, total, err := repo.List(ctx, model.UserFilter{})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Equal(t, []string{"carol", "bob", "alice"}, usernames(users))
		require.NotNil(t, users[0].Address)
	})

	t.Run("role", func(t *testing.T) {
		doctor := model.RoleDoctor
		users, total, err := repo.List(ctx, model.UserFilter{Role: &doctor, Ordering: model.OrderUsernameAsc})
		require.NoError(t, err)
		require.Equal(t, 2, total)
		require.Equal(t, []string{"bob", "carol"}, usernames(users))
	})

	t.Run("active flag", func(t *testing.T) {
		inactive := false
		users, _, err := repo.List(ctx, model.UserFilter{IsActive: &inactive})
		require.NoError(t, err)
		require.Equal(t, []string{"carol"}, usernames(users))
	})

	t.Run("created range", func(t *testing.T) {
		after := base.Add(12 * time.Hour)
		before := base.Add(36 * time.Hour)
		users, total, err := repo.List(ctx, model.UserFilter{CreatedAfter: &after, CreatedBefore: &before})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, []string{"bob"}, usernames(users))
	})

	t.Run("search is case insensitive across fields", func(t *testing.T) {
		users, _, err := repo.List(ctx, model.UserFilter{Search: "ALI"})
		require.NoError(t, err)
		require.Equal(t, []string{"alice"}, usernames(users))

		users, _, err = repo.List(ctx, model.UserFilter{Search: "first b"})
		require.NoError(t, err)
		require.Equal(t, []string{"bob"}, usernames(users))

		users, _, err = repo.List(ctx, model.UserFilter{Search: "%"})
		require.NoError(t, err)
		require.Empty(t, users)
	})

	t.Run("pagination keeps total", func(t *testing.T) {
		users, total, err := repo.List(ctx, model.UserFilter{Ordering: model.OrderUsernameDesc, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Equal(t, 3, total)
		require.Equal(t, []string{"bob"}, usernames(users))
	})

	t.Run("combined filters keep placeholder order", func(t *testing.T) {
		doctor := model.RoleDoctor
		active := true
		after := base
		users, total, err := repo.List(ctx, model.UserFilter{
			Role: &doctor, IsActive: &active, CreatedAfter: &after, Search: "b", Limit: 10,
		})
		require.NoError(t, err)
		require.Equal(t, 1, total)
		require.Equal(t, []string{"bob"}, usernames(users))
	})
}

func usernames(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Username)
	}
	return out
}

func TestProfileRepositoryStoresOneVariant(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewPgProfileRepository(db)
	u := seedUser(t, db, "drwho", model.RoleDoctor, base)

	p, err := model.NewRoleProfile(u.Role, u.ID, base)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, nil, p))

	found, err := repo.FindByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.IsType(t, &model.DoctorProfile{}, found)
	require.Equal(t, p.Base().ID, found.Base().ID)

	var patients int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM patients WHERE user_id = $1`, u.ID).Scan(&patients))
	require.Zero(t, patients)

	_, err = repo.FindByUserID(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeletingUserCascades(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	u := seedUser(t, db, "jane", model.RolePatient, base)
	p, err := model.NewRoleProfile(u.Role, u.ID, base)
	require.NoError(t, err)
	require.NoError(t, NewPgProfileRepository(db).Create(ctx, nil, p))
	_, _, err = NewPgTokenRepository(db).GetOrCreate(ctx, u.ID, "k1", base)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM users WHERE id = $1`, u.ID)
	require.NoError(t, err)

	for _, table := range []string{"addresses", "patients", "auth_tokens"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		require.Zero(t, n, table)
	}
}

func TestTokenRepositoryGetOrCreateIsIdempotent(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewPgTokenRepository(db)
	u := seedUser(t, db, "jane", model.RolePatient, base)

	first, created, err := repo.GetOrCreate(ctx, u.ID, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", base)
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := repo.GetOrCreate(ctx, u.ID, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", base.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.Key, second.Key)

	userID, err := repo.FindUserIDByKey(ctx, first.Key)
	require.NoError(t, err)
	require.Equal(t, u.ID, userID)

	_, err = repo.FindUserIDByKey(ctx, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestTokenRepositoryGetOrCreateConcurrentFirstLogin(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewPgTokenRepository(db)
	u := seedUser(t, db, "jane", model.RolePatient, base)

	const callers = 8
	keys := make([]string, callers)
	created := make([]bool, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			candidate := fmt.Sprintf("%040d", i)
			token, ok, err := repo.GetOrCreate(ctx, u.ID, candidate, base)
			errs[i], created[i] = err, ok
			if token != nil {
				keys[i] = token.Key
			}
		}()
	}
	wg.Wait()

	winners := 0
	for i := range callers {
		require.NoError(t, errs[i])
		require.Equal(t, keys[0], keys[i])
		if created[i] {
			winners++
		}
	}
	require.Equal(t, 1, winners)

	var rows int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auth_tokens WHERE user_id = $1`, u.ID).Scan(&rows))
	require.Equal(t, 1, rows)
}

func TestUniqueViolationMapsConstraintToField(t *testing.T) {
	err := uniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "email", dup.Field)
	require.ErrorIs(t, err, common.ErrConflict)

	err = uniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "patients_user_id_key"})
	require.False(t, errors.As(err, &dup))
	require.ErrorIs(t, err, common.ErrConflict)

	require.Nil(t, uniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.Nil(t, uniqueViolation(errors.New("boom")))
}

func TestNewTokenCacheWithoutRedisIsNoop(t *testing.T) {
	c := NewTokenCache(nil, time.Minute)
	require.NoError(t, c.SetUserID(context.Background(), "k", "u"))

	_, ok, err := c.GetUserID(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisTokenCacheSurfacesConnectionErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewTokenCache(rdb, time.Minute)

	_, ok, err := c.GetUserID(context.Background(), "k")
	require.Error(t, err)
	require.False(t, ok)
	require.Error(t, c.SetUserID(context.Background(), "k", "u"))
}

func TestCacheKeyHidesToken(t *testing.T) {
	key := cacheKey("secret-token")
	require.NotContains(t, key, "secret-token")
	require.Len(t, key, len(tokenCachePrefix)+64)
}
