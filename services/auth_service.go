package services

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/samber/lo"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db       *gorm.DB
	tokenTTL time.Duration
}

func NewAuthService(db *gorm.DB, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{db: db, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(2, 255)),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&in.Role, validation.Required, validation.In(lo.ToAnySlice(models.StaffRoles)...)),
	)
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = strings.ToLower(in.Role)
	if err := in.Validate(); err != nil {
		return nil, validationError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Password: string(hashed),
		Role:     in.Role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return &LoginResult{Token: token, ExpiresAt: time.Now().Add(s.tokenTTL), User: &user}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(token string) error {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return err
	}
	utils.BlacklistToken(token, claims.ExpiresAt.Time)
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (s *AuthService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}
