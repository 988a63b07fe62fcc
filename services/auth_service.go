package services

import (
	"context"
	"fmt"
	"strings"

	"pqrssi-portal/config"
	"pqrssi-portal/models"
	"pqrssi-portal/utils"

	"gorm.io/gorm"
)

// AuthService owns the credential store: registration, login checks and the
// operator tasks run from pqrssictl.
type AuthService struct {
	db   *gorm.DB
	hash func(string) (string, error)
}

func NewAuthService(db *gorm.DB) *AuthService {
	if db == nil {
		db = config.DB
	}
	return &AuthService{db: db, hash: utils.HashPassword}
}

// Register creates a regular user. The password policy runs before any store
// access and the email check runs before the insert; a concurrent duplicate is
// still caught by the unique index and reported as ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, false)
}

// CreateAdmin creates a user with the administrator flag set.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, true)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, admin bool) (*models.User, error) {
	name = utils.SanitizeInput(name)
	email = utils.NormalizeEmail(email)

	if ok, _ := utils.ValidatePassword(password); !ok {
		return nil, ErrPasswordPolicy
	}
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if !utils.ValidateEmail(email) {
		return nil, fmt.Errorf("email %q is not valid: %w", email, ErrInvalidInput)
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		IsAdmin:  admin,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// Authenticate checks an email and password against the stored bcrypt hash.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.findByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, ErrWrongPassword
	}
	return user, nil
}

// Promote grants the administrator flag to an existing user.
func (s *AuthService) Promote(ctx context.Context, email string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", utils.NormalizeEmail(email)).
		Update("is_admin", true)
	if res.Error != nil {
		return fmt.Errorf("promote user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MigrateResult summarizes a MigratePlaintextPasswords run.
type MigrateResult struct {
	Hashed  int
	Skipped int
	Failed  int
}

// MigratePlaintextPasswords hashes any stored password that is not already a
// bcrypt hash. Rows that fail are counted and left untouched.
func (s *AuthService) MigratePlaintextPasswords(ctx context.Context) (*MigrateResult, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	result := &MigrateResult{}
	for _, user := range users {
		if utils.IsBcryptHash(user.Password) {
			result.Skipped++
			continue
		}

		hashed, err := s.hash(user.Password)
		if err != nil {
			config.Logger.Warn().Err(err).Str("email", user.Email).Msg("failed to hash password")
			result.Failed++
			continue
		}

		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", user.UserID).
			Update("contraseña", hashed).Error; err != nil {
			config.Logger.Warn().Err(err).Str("email", user.Email).Msg("failed to update password")
			result.Failed++
			continue
		}
		result.Hashed++
	}
	return result, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}

	var user models.User
	res := s.db.WithContext(ctx).Where("email = ?", email).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("lookup user by email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &user, nil
}
