package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"medportal/internal/common"
	"medportal/internal/common/security"
	"medportal/internal/domain/model"
	"medportal/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid username or password."
	msgAccountDisabled    = "User account is disabled."
	msgInvalidToken       = "Invalid token."
	msgUserInactive       = "User inactive or deleted."
	msgNotAuthenticated   = "Authentication credentials were not provided."
)

type AuthServiceConfig struct {
	BcryptCost     int
	PasswordPolicy security.PasswordPolicy
	// Now is the clock used for timestamps; defaults to time.Now.
	Now func() time.Time
}

type AuthService struct {
	db       *sql.DB
	users    repository.UserRepository
	profiles repository.ProfileRepository
	tokens   repository.TokenRepository
	cache    repository.TokenCache
	media    MediaStore
	log      logrus.FieldLogger

	cost   int
	policy security.PasswordPolicy
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	db *sql.DB,
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	tokens repository.TokenRepository,
	cache repository.TokenCache,
	media MediaStore,
	log logrus.FieldLogger,
	cfg AuthServiceConfig,
) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.PasswordPolicy == nil {
		cfg.PasswordPolicy = security.DefaultPasswordPolicy()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cache == nil {
		cache = repository.NewTokenCache(nil, 0)
	}
	return &AuthService{
		db:       db,
		users:    users,
		profiles: profiles,
		tokens:   tokens,
		cache:    cache,
		media:    media,
		log:      log,
		cost:     cfg.BcryptCost,
		policy:   cfg.PasswordPolicy,
		now:      cfg.Now,
	}
}

type AddressInput struct {
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type ProfilePictureUpload struct {
	Filename string
	Data     []byte
}

type SignupRequest struct {
	Username        string                `json:"username"`
	Email           string                `json:"email"`
	Password        string                `json:"password"`
	ConfirmPassword string                `json:"confirm_password"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	UserType        string                `json:"user_type"`
	Address         *AddressInput         `json:"address"`
	ProfilePicture  *ProfilePictureUpload `json:"-"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResult struct {
	Account     *model.User
	User        *model.UserProjection
	Token       string
	RedirectURL string
}

// Register validates req and creates the user, its address and its role profile in one transaction,
// then issues the user's token.
func (s *AuthService) Register(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.normalize()

	role, err := s.validateSignup(ctx, &req)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var picture *string
	if req.ProfilePicture != nil && s.media != nil {
		rel, err := s.media.SaveProfilePicture(ctx, req.Username, req.ProfilePicture.Filename, req.ProfilePicture.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to store profile picture: %w", err)
		}
		picture = &rel
	}

	now := s.now().UTC()
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           role,
		IsActive:       true,
		ProfilePicture: picture,
		Address: &model.Address{
			ID:        uuid.NewString(),
			Line1:     req.Address.Line1,
			City:      req.Address.City,
			State:     req.Address.State,
			Pincode:   req.Address.Pincode,
			CreatedAt: now,
			UpdatedAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.Address.UserID = user.ID

	if err := s.createAccount(ctx, user); err != nil {
		if picture != nil {
			if delErr := s.media.Delete(ctx, *picture); delErr != nil {
				s.log.WithError(delErr).WithField("path", *picture).Warn("failed to remove orphaned profile picture")
			}
		}
		return nil, err
	}

	token, err := s.IssueOrFetchToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username, "user_type": user.Role}).Info("user registered")

	return &AuthResult{
		Account:     user,
		User:        model.NewUserProjection(user, mediaURL(s.media)),
		Token:       token,
		RedirectURL: user.Role.DashboardPath(),
	}, nil
}

func (s *AuthService) createAccount(ctx context.Context, user *model.User) error {
	profile, err := model.NewRoleProfile(user.Role, user.ID, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to build role profile: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.users.Create(ctx, tx, user); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			return duplicateFieldError(dup.Field)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.users.CreateAddress(ctx, tx, user.Address); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	if err := s.profiles.Create(ctx, tx, profile); err != nil {
		return fmt.Errorf("failed to create %s profile: %w", profile.Role(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit signup: %w", err)
	}
	return nil
}

// duplicateFieldError reports a signup that lost a uniqueness race the same way the pre-write check would.
func duplicateFieldError(field string) error {
	switch field {
	case "email":
		return common.FieldError("email", msgEmailTaken)
	case "username":
		return common.FieldError("username", msgUsernameTaken)
	default:
		return common.FieldError(common.NonFieldErrors, fmt.Sprintf("A user with this %s already exists.", field))
	}
}

// Authenticate verifies credentials. Unknown users and wrong passwords produce identical errors.
func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)

	verr := common.NewValidationError()
	verr.Check("username", req.Username, required)
	verr.Check("password", req.Password, required)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn a comparison so unknown usernames cost the same as wrong passwords.
			security.CheckPasswordHash(req.Password, s.dummyPasswordHash())
			return nil, &common.AuthenticationError{Message: msgInvalidCredentials}
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, &common.AuthenticationError{Message: msgInvalidCredentials}
	}
	if !user.IsActive {
		return nil, &common.AuthenticationError{Message: msgAccountDisabled}
	}
	return user, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := security.HashPassword(uuid.NewString(), s.cost)
		if err != nil {
			s.log.WithError(err).Warn("failed to prepare timing hash")
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Login authenticates and returns the user's token together with the dashboard to land on.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.Authenticate(ctx, req)
	if err != nil {
		var authErr *common.AuthenticationError
		if errors.As(err, &authErr) {
			s.log.WithField("username", req.Username).Info("login rejected")
		}
		return nil, err
	}

	token, err := s.IssueOrFetchToken(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "user_type": user.Role}).Info("user logged in")

	return &AuthResult{
		Account:     user,
		User:        model.NewUserProjection(user, mediaURL(s.media)),
		Token:       token,
		RedirectURL: user.Role.DashboardPath(),
	}, nil
}

// IssueOrFetchToken returns the user's existing token or creates the first one.
func (s *AuthService) IssueOrFetchToken(ctx context.Context, user *model.User) (string, error) {
	candidate, err := security.GenerateTokenKey()
	if err != nil {
		return "", err
	}

	token, created, err := s.tokens.GetOrCreate(ctx, user.ID, candidate, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	if created {
		s.log.WithField("user_id", user.ID).Debug("issued token")
	}

	if err := s.cache.SetUserID(ctx, token.Key, user.ID); err != nil {
		s.log.WithError(err).Warn("token cache write failed")
	}
	return token.Key, nil
}

// ResolveToken maps a bearer token to its active owner.
func (s *AuthService) ResolveToken(ctx context.Context, key string) (*model.User, error) {
	if key == "" {
		return nil, &common.NotAuthenticatedError{Detail: msgInvalidToken}
	}

	userID, hit, err := s.cache.GetUserID(ctx, key)
	if err != nil {
		s.log.WithError(err).Warn("token cache read failed")
	}
	if !hit {
		userID, err = s.tokens.FindUserIDByKey(ctx, key)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, &common.NotAuthenticatedError{Detail: msgInvalidToken}
			}
			return nil, fmt.Errorf("failed to look up token: %w", err)
		}
		if err := s.cache.SetUserID(ctx, key, userID); err != nil {
			s.log.WithError(err).Warn("token cache write failed")
		}
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, &common.NotAuthenticatedError{Detail: msgUserInactive}
		}
		return nil, fmt.Errorf("failed to load token owner: %w", err)
	}
	if !user.IsActive {
		return nil, &common.NotAuthenticatedError{Detail: msgUserInactive}
	}
	return user, nil
}
