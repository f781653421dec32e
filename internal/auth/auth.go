// Package auth authenticates ledger users and decides who may request advisory reports.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/spend-ledger/internal/common"
	"github.com/Veraticus/spend-ledger/internal/model"
)

// Credential length limits.
const (
	MinUsernameLength = 3
	MinPasswordLength = 4
)

// ErrWeakCredentials is returned when a username or password is too short.
var ErrWeakCredentials = errors.New("credentials too short")

// UserStore is the slice of storage the authenticator needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, role model.Role) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) error
}

// Authenticator registers users and checks their passwords.
type Authenticator struct {
	store UserStore
	cost  int
}

// NewAuthenticator creates an authenticator using bcrypt's default cost.
func NewAuthenticator(store UserStore) *Authenticator {
	return &Authenticator{store: store, cost: bcrypt.DefaultCost}
}

// Register creates a user with a hashed password.
func (a *Authenticator) Register(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < MinUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters", ErrWeakCredentials, MinUsernameLength)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrPrecondition, role)
	}

	hash, err := a.hash(password)
	if err != nil {
		return nil, err
	}

	user, err := a.store.CreateUser(ctx, username, hash, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	slog.Info("Registered user", "username", username, "role", string(role))
	return user, nil
}

// ChangePassword replaces a user's password.
func (a *Authenticator) ChangePassword(ctx context.Context, username, password string) error {
	hash, err := a.hash(password)
	if err != nil {
		return err
	}
	if err := a.store.UpdateUserPassword(ctx, username, hash); err != nil {
		return fmt.Errorf("failed to update password for %q: %w", username, err)
	}
	return nil
}

// Login verifies a username and password. Unknown users and wrong passwords
// both return common.ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Identity, error) {
	user, err := a.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("Rejected login", "username", user.Username)
		return nil, common.ErrInvalidCredentials
	}

	slog.Debug("User logged in", "username", user.Username, "role", string(user.Role))
	return &Identity{User: *user}, nil
}

func (a *Authenticator) hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", ErrWeakCredentials, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Identity is an authenticated user.
type Identity struct {
	User model.User
}

// IsPrivileged reports whether the identity may request advisory reports.
// A nil identity is anonymous and never privileged.
func (i *Identity) IsPrivileged(_ context.Context) (bool, error) {
	if i == nil {
		return false, nil
	}
	return i.User.IsAdmin(), nil
}

// Username returns the user's name, or "anonymous".
func (i *Identity) Username() string {
	if i == nil {
		return "anonymous"
	}
	return i.User.Username
}
