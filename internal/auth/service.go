package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgAuth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid credentials"
	invalidSecretMessage      = "Forbidden: Invalid secret"
	duplicateUserMessage      = "username or email already registered"
	userCreatedMessage        = "User created successfully"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByName(ctx context.Context, name string) (*models.User, error)
	ExistsByNameOrEmail(ctx context.Context, name, email string) (bool, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	Burn(password string)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users       userRepository
	Hasher      passwordHasher
	JWT         config.JWTConfig
	AdminSecret string
	Logger      *logger.Logger
}

type service struct {
	users       userRepository
	hasher      passwordHasher
	jwtCfg      config.JWTConfig
	adminSecret string
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the register/login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.AdminSecret == "" {
		return nil, fmt.Errorf("admin creation secret is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		users:       params.Users,
		hasher:      params.Hasher,
		jwtCfg:      params.JWT,
		adminSecret: params.AdminSecret,
		logg:        params.Logger,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.adminSecret)) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, invalidSecretMessage)
	}

	name := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username, email and password are required")
	}
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "role must be admin or operator")
	}

	taken, err := s.users.ExistsByNameOrEmail(ctx, name, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateUserMessage)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, duplicateUserMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"user_id": user.ID.String(),
		"role":    string(role),
	}), "auth.user.registered")

	return &RegisterResponse{Message: userCreatedMessage, UserID: user.ID}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now().UTC(), user.ID, user.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	logCtx := s.logg.WithUserID(ctx, user.ID.String())
	s.logg.Info(s.logg.WithActorRole(logCtx, string(user.Role)), "auth.login.succeeded")

	return &LoginResult{
		Token:     token,
		ExpiresIn: int(s.jwtCfg.TTL().Seconds()),
		User:      users.FromModel(user),
	}, nil
}

// authenticate resolves the user by login name and checks the password. An
// unknown name still pays for one hash verification so both failure paths
// take comparable time.
func (s *service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	name := strings.TrimSpace(username)
	if name == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.Burn(password)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}
