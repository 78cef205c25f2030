package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitthalk15/DataDash/app/models"
	"github.com/vitthalk15/DataDash/app/repositories"
	"github.com/vitthalk15/DataDash/pkg/auth"
	"github.com/vitthalk15/DataDash/pkg/logger"
	"github.com/vitthalk15/DataDash/pkg/validate"
)

type RegisterInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateUserInput is the admin-only account creation body.
type CreateUserInput struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"nullable,in=user,manager,admin"`
}

// UpdateUserInput is the self-service profile update. Email, role and
// password are not part of it.
type UpdateUserInput struct {
	Name        *string             `json:"name"     validate:"nullable,min=2,max=100"`
	Phone       *string             `json:"phone"    validate:"nullable,max=32"`
	Address     *string             `json:"address"  validate:"nullable,max=255"`
	Company     *string             `json:"company"  validate:"nullable,max=100"`
	Position    *string             `json:"position" validate:"nullable,max=100"`
	Bio         *string             `json:"bio"      validate:"nullable,max=500"`
	Timezone    *string             `json:"timezone" validate:"nullable,max=64"`
	Language    *string             `json:"language" validate:"nullable,max=8"`
	Avatar      *string             `json:"avatar"   validate:"nullable,url"`
	Preferences *models.Preferences `json:"preferences"`
}

// PublicUser is the account summary returned with a token.
type PublicUser struct {
	ID    string      `json:"_id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// UserService handles accounts, credentials and profile changes.
type UserService struct {
	users  repositories.UserRepository
	tokens *auth.Tokens
	files  FileStore
}

func NewUserService(users repositories.UserRepository, tokens *auth.Tokens, files FileStore) *UserService {
	return &UserService{users: users, tokens: tokens, files: files}
}

// ─── Credentials ──────────────────────────────────────────────────────────────

// Register creates a user-role account and signs it in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}
	u, err := s.create(ctx, in.Name, in.Email, in.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID)
	return s.session(u)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}
	u, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &AuthError{Message: "Invalid credentials"}
	}
	if err != nil {
		return nil, fmt.Errorf("users: login: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, &AuthError{Message: "Invalid credentials"}
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to its principal. The user is
// reloaded so deletions and role changes apply at once.
func (s *UserService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	u, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("%w: user %s: %w", ErrUnauthenticated, claims.Subject, err)
	}
	return auth.Principal{UserID: u.ID, Role: string(u.Role), Email: u.Email, Name: u.Name}, nil
}

// ─── Accounts ─────────────────────────────────────────────────────────────────

func (s *UserService) Me(ctx context.Context, actor auth.Principal) (*models.User, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		return nil, translate("User", err)
	}
	return u, nil
}

// List returns every account. Admins and managers only.
func (s *UserService) List(ctx context.Context, actor auth.Principal) ([]models.User, error) {
	if actor.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if !actor.HasRole(string(models.RoleAdmin), string(models.RoleManager)) {
		return nil, forbidden("Not authorized")
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, actor auth.Principal, id string) (*models.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate("User", err)
	}
	return u, nil
}

// Create adds an account with any role. Admin only.
func (s *UserService) Create(ctx context.Context, actor auth.Principal, in CreateUserInput) (*models.User, error) {
	if err := requireAdmin(actor, "Not authorized"); err != nil {
		return nil, err
	}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}
	role := models.Role(in.Role)
	if role == "" {
		role = models.RoleUser
	}
	return s.create(ctx, in.Name, in.Email, in.Password, role)
}

func (s *UserService) Update(ctx context.Context, actor auth.Principal, id string, in UpdateUserInput) (*models.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	if errs := validate.Struct(&in); validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate("User", err)
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		u.Name = strings.TrimSpace(*in.Name)
	}
	set(&u.Profile.Phone, in.Phone)
	set(&u.Profile.Address, in.Address)
	set(&u.Profile.Company, in.Company)
	set(&u.Profile.Position, in.Position)
	set(&u.Profile.Bio, in.Bio)
	set(&u.Profile.Timezone, in.Timezone)
	set(&u.Profile.Language, in.Language)
	set(&u.Profile.Avatar, in.Avatar)
	if in.Preferences != nil {
		u.Preferences = *in.Preferences
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("users: update: %w", translate("User", err))
	}
	return u, nil
}

// Delete removes an account. Admin only; admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if err := requireAdmin(actor, "Not authorized"); err != nil {
		return err
	}
	if actor.UserID == id {
		return &ValidationError{Message: "Cannot delete your own account"}
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("users: delete: %w", translate("User", err))
	}
	return nil
}

// UploadAvatar stores an avatar image and points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, actor auth.Principal, id string, up Upload) (*models.User, error) {
	if err := selfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, translate("User", err)
	}
	url, err := storeImage(ctx, s.files, "avatar", "avatars", u.ID, up)
	if err != nil {
		return nil, err
	}
	u.Profile.Avatar = url
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("users: set avatar: %w", translate("User", err))
	}
	return u, nil
}

// EnsureAdmin creates an admin account for email unless one exists. It
// reports whether a new account was written.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, fmt.Errorf("users: ensure admin: %w", err)
	}
	u, err = s.create(ctx, name, email, password, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func (s *UserService) create(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Role:         role,
		Profile:      models.Profile{Language: "en"},
		Preferences:  models.Preferences{Notifications: models.DefaultNotifications()},
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, &ValidationError{
				Message: "User already exists",
				Fields:  map[string]string{"email": "User already exists"},
			}
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}
	return u, nil
}

func (s *UserService) session(u *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("users: issue token: %w", err)
	}
	return &AuthResult{
		Token: token,
		User:  PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	}, nil
}

func selfOrAdmin(actor auth.Principal, id string) error {
	if actor.UserID == "" {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() && actor.UserID != id {
		return forbidden("Not authorized")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
