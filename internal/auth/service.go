package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/commentbank/internal/config"
	"github.com/mrlokans/commentbank/internal/entities"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var (
	ErrTeacherNotFound  = errors.New("teacher not found")
	ErrTeacherExists    = errors.New("teacher already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters: letters, digits, dot, underscore or hyphen")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// Service manages teacher accounts, password checks and API tokens.
type Service struct {
	db     *gorm.DB
	config config.Auth
}

func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{db: db, config: cfg}
}

// CreateTeacher validates the credentials and stores a new teacher account.
func (s *Service) CreateTeacher(username, email, password string) (*entities.Teacher, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	switch {
	case username == "":
		return nil, ErrUsernameRequired
	case !usernamePattern.MatchString(username):
		return nil, ErrUsernameInvalid
	case email == "":
		return nil, ErrEmailRequired
	case len(email) > 254 || !emailPattern.MatchString(email):
		return nil, ErrEmailInvalid
	}

	var existing entities.Teacher
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, ErrTeacherExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing teacher: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	teacher := &entities.Teacher{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.db.Create(teacher).Error; err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	return teacher, nil
}

// Authenticate accepts either the username or the email as login.
// Unknown logins and wrong passwords both return ErrInvalidPassword.
func (s *Service) Authenticate(login, password string) (*entities.Teacher, error) {
	var teacher entities.Teacher
	err := s.db.Where("username = ? OR email = ?", login, login).First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}

	if err := CheckPassword(password, teacher.PasswordHash); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&teacher).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	teacher.LastLoginAt = &now
	return &teacher, nil
}

func (s *Service) GetTeacherByID(id uint) (*entities.Teacher, error) {
	var teacher entities.Teacher
	if err := s.db.First(&teacher, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}
	return &teacher, nil
}

// ValidateToken resolves a plaintext bearer token to its teacher.
func (s *Service) ValidateToken(token string) (*entities.Teacher, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var teacher entities.Teacher
	err := s.db.Where("token_hash = ?", HashToken(token)).First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if s.config.TokenExpiry > 0 && teacher.TokenCreatedAt != nil &&
		time.Since(*teacher.TokenCreatedAt) > s.config.TokenExpiry {
		return nil, ErrTokenExpired
	}
	return &teacher, nil
}

// GenerateToken replaces the teacher's API token and returns the plaintext.
func (s *Service) GenerateToken(teacherID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	result := s.db.Model(&entities.Teacher{}).Where("id = ?", teacherID).Updates(map[string]any{
		"token_hash":       hash,
		"token_created_at": time.Now(),
	})
	if result.Error != nil {
		return "", fmt.Errorf("failed to save token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrTeacherNotFound
	}
	return plaintext, nil
}

func (s *Service) RevokeToken(teacherID uint) error {
	err := s.db.Model(&entities.Teacher{}).Where("id = ?", teacherID).Updates(map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Service) HasTeachers() (bool, error) {
	var count int64
	if err := s.db.Model(&entities.Teacher{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) IsAuthEnabled() bool {
	return s.config.Mode == config.AuthModeLocal
}
