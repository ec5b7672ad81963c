package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AccountService covers registration, login, staff provisioning and
// password recovery for all three roles.
type AccountService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
	logger     *zap.Logger
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	UserRepo   repository.UserRepository
	ResetRepo  repository.PasswordResetRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	ResetTTL   time.Duration
	Logger     *zap.Logger
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	ttl := deps.ResetTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AccountService{
		users:      deps.UserRepo,
		resets:     deps.ResetRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		resetTTL:   ttl,
		logger:     deps.Logger,
	}
}

// RegisterInput is the self-service client signup payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Number   string
	City     string
	Province string
}

// StaffInput is the admin-side staff provisioning payload.
type StaffInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Department string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// RegisterClient creates a client account. Emails are unique under
// case-insensitive comparison among non-deleted accounts.
func (s *AccountService) RegisterClient(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Number:       input.Number,
		City:         input.City,
		Province:     input.Province,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateStaff provisions a staff or admin account.
func (s *AccountService) CreateStaff(ctx context.Context, input StaffInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	role := input.Role
	if role != domain.RoleStaff && role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError("role must be staff or admin", nil)
	}
	if role == domain.RoleStaff && strings.TrimSpace(input.Department) == "" {
		return nil, apperrors.NewValidationError("department is required for staff", nil)
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   strings.TrimSpace(input.Department),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(apperrors.MapError(err)) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// DeleteStaff soft-deletes a staff account. The account drops out of
// assignment candidacy immediately; tickets already assigned to it are
// left as they are.
func (s *AccountService) DeleteStaff(ctx context.Context, staffID string) error {
	user, err := s.users.GetByID(ctx, staffID)
	if err != nil {
		return notFoundOr(err, "staff", map[string]any{"staff_id": staffID})
	}
	if user.Role == domain.RoleClient {
		return apperrors.NewValidationError("account is not staff", nil)
	}
	if err := s.users.SoftDelete(ctx, staffID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RequestPasswordReset issues a single-use reset token. The raw token
// is returned for delivery; only its hash is stored. An unknown email
// yields an empty token rather than an error, so the endpoint does not
// leak which addresses have accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperrors.IsNotFound(apperrors.MapError(err)) {
			return "", nil
		}
		return "", apperrors.MapError(err)
	}

	raw := uuid.NewString()
	reset := &repository.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hashResetToken(raw),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return "", apperrors.MapError(err)
	}
	return raw, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AccountService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return apperrors.NewValidationError("token and password are required", nil)
	}

	reset, err := s.resets.GetByTokenHash(ctx, hashResetToken(rawToken))
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := s.users.GetByID(ctx, reset.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.resets.MarkUsed(ctx, reset.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(apperrors.MapError(err)) {
			return nil
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("email already registered", map[string]any{"email": existing.Email})
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
