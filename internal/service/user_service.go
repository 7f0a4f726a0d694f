package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/policy"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

// UserService provides account use cases and credential checks.
type UserService interface {
	// GetCurrent returns the actor's own profile.
	GetCurrent(ctx context.Context, actor *domain.User) (*domain.User, error)

	// ListUsers returns every user for an owner and only the actor for a member.
	ListUsers(ctx context.Context, actor *domain.User, page domain.Page) ([]*domain.User, error)

	// CreateUser registers an active account. Owner role only.
	CreateUser(ctx context.Context, actor *domain.User, email, password string, role domain.Role) (*domain.User, error)

	// Authenticate checks a login attempt and returns the matching active user.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetActor loads the user a bearer token was issued to. Missing and
	// inactive users are reported as domain.ErrInvalidCredentials.
	GetActor(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// EnsureOwner creates the initial owner account unless the email is
	// already registered. It reports whether a user was created.
	EnsureOwner(ctx context.Context, email, password string) (*domain.User, bool, error)
}

type userServiceImpl struct {
	tx     store.Transactor
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	tx store.Transactor,
	users store.UserStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (UserService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		tx:     tx,
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// GetCurrent implements UserService.GetCurrent
func (s *userServiceImpl) GetCurrent(_ context.Context, actor *domain.User) (*domain.User, error) {
	return actor, nil
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(
	ctx context.Context,
	actor *domain.User,
	page domain.Page,
) ([]*domain.User, error) {
	if !actor.IsOwner() {
		return []*domain.User{actor}, nil
	}

	users, err := s.users.List(ctx, page.Normalize())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list users",
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_users", "failed to list users", translateStoreError(err, "user"))
	}
	return users, nil
}

// CreateUser implements UserService.CreateUser
func (s *userServiceImpl) CreateUser(
	ctx context.Context,
	actor *domain.User,
	email, password string,
	role domain.Role,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := policy.RequireOwnerRole(actor); err != nil {
		return nil, NewServiceError("create_user", "access denied", err)
	}

	user, err := s.newUser(email, password, role)
	if err != nil {
		return nil, NewServiceError("create_user", "invalid user", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to create user with existing email")
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, NewServiceError("create_user", "failed to create user", translateStoreError(err, "user"))
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
		slog.String("created_by", actor.ID.String()))
	return user, nil
}

func (s *userServiceImpl) newUser(email, password string, role domain.Role) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "must be one of owner, member", domain.ErrInvalidRole)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return domain.NewUser(email, hashed, role)
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login attempt for unknown email")
			return nil, NewServiceError("authenticate", "invalid credentials", domain.ErrInvalidCredentials)
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, NewServiceError("authenticate", "failed to load user", translateStoreError(err, "user"))
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password", slog.String("user_id", user.ID.String()))
		return nil, NewServiceError("authenticate", "invalid credentials", domain.ErrInvalidCredentials)
	}

	if !user.IsActive {
		log.Info("login attempt by inactive user", slog.String("user_id", user.ID.String()))
		return nil, NewServiceError("authenticate", "inactive user", domain.NewPermissionError("inactive user"))
	}

	return user, nil
}

// GetActor implements UserService.GetActor
func (s *userServiceImpl) GetActor(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("get_actor", "unknown user", domain.ErrInvalidCredentials)
		}
		return nil, NewServiceError("get_actor", "failed to load user", translateStoreError(err, "user"))
	}
	if !user.IsActive {
		return nil, NewServiceError("get_actor", "inactive user", domain.ErrInvalidCredentials)
	}
	return user, nil
}

// EnsureOwner implements UserService.EnsureOwner
func (s *userServiceImpl) EnsureOwner(ctx context.Context, email, password string) (*domain.User, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		log.Info("initial owner already exists", slog.String("user_id", existing.ID.String()))
		return existing, false, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, false, NewServiceError("ensure_owner", "failed to look up owner", translateStoreError(err, "user"))
	}

	user, err := s.newUser(email, password, domain.RoleOwner)
	if err != nil {
		return nil, false, NewServiceError("ensure_owner", "invalid owner", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, false, NewServiceError("ensure_owner", "failed to create owner", translateStoreError(err, "user"))
	}

	log.Info("initial owner created", slog.String("user_id", user.ID.String()))
	return user, true, nil
}
