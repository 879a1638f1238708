package service

import (
	"context"
	"errors"
	"fmt"
	"golang.org/x/crypto/bcrypt"
	"kusina-service/internal/auth"
	"kusina-service/internal/entity"
	"kusina-service/internal/repository"
	"strings"
	"time"
)

const passwordHashCost = 12

type UserService struct {
	users    UserStore
	signer   *auth.Signer
	hashCost int
	now      func() time.Time
}

// NewUserService creates a new instance of UserService.
func NewUserService(users UserStore, signer *auth.Signer) *UserService {
	return &UserService{
		users:    users,
		signer:   signer,
		hashCost: passwordHashCost,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileInput struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,phmobile"`
	Address         string `json:"address" validate:"omitempty,min=10"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=8"`
}

type Session struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, in.Name, in.Email, in.Password, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("user_id", user.ID.Hex()).Msg("User registered")
	return user, nil
}

// Login checks the credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, internalError(err, "loading user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.signer.Sign(user)
	if err != nil {
		return nil, internalError(err, "signing token")
	}

	logger.Info().Str("user_id", user.ID.Hex()).Msg("User logged in")
	return &Session{Token: token, User: user}, nil
}

func (s *UserService) Profile(ctx context.Context, p auth.Principal) (*entity.User, error) {
	if err := p.RequireUser(); err != nil {
		return nil, authError(err)
	}
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, storeError(err, "user", "loading profile")
	}
	return user, nil
}

// UpdateProfile changes the caller's own account. A new password is only
// accepted together with the correct current one.
func (s *UserService) UpdateProfile(ctx context.Context, p auth.Principal, in UpdateProfileInput) (*entity.User, error) {
	if err := p.RequireUser(); err != nil {
		return nil, authError(err)
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, storeError(err, "user", "loading profile")
	}

	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return nil, invalidInput("currentPassword is required to set a new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return nil, invalidInput("current password is incorrect")
		}
		hash, err := s.hash(in.NewPassword)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.Name = in.Name
	user.Email = in.Email
	user.Phone = in.Phone
	user.Address = in.Address
	user.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, storeError(err, "user with email "+in.Email, "updating profile")
	}
	return updated, nil
}

// EnsureAdmin makes sure the operator account exists and has the admin role.
// Nothing happens when email is empty.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == entity.RoleAdmin {
			return user, nil
		}
		user.Role = entity.RoleAdmin
		user.UpdatedAt = s.now().UTC().Truncate(time.Millisecond)
		updated, err := s.users.Update(ctx, user)
		if err != nil {
			return nil, storeError(err, "user", "promoting admin")
		}
		logger.Info().Str("user_id", updated.ID.Hex()).Msg("User promoted to admin")
		return updated, nil
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, internalError(err, "loading admin")
	}

	if len(password) < 8 {
		return nil, invalidInput("admin password must be at least 8 characters")
	}
	admin, err := s.createUser(ctx, name, email, password, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("user_id", admin.ID.Hex()).Msg("Admin account created")
	return admin, nil
}

func (s *UserService) createUser(ctx context.Context, name, email, password string, role entity.Role) (*entity.User, error) {
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	user, err := s.users.Insert(ctx, &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, storeError(err, "user with email "+email, "creating user")
	}
	return user, nil
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", internalError(err, "hashing password")
	}
	return string(hash), nil
}
