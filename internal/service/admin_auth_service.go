package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/print24/pricing_api/internal/models"
	"github.com/print24/pricing_api/internal/repository"
	"github.com/print24/pricing_api/internal/utils"
)

// AdminAuthService authenticates back-office users and issues JWTs for the
// admin endpoints.
type AdminAuthService struct {
	admins *repository.AdminUserRepository
}

// NewAdminAuthService constructs an AdminAuthService.
func NewAdminAuthService(admins *repository.AdminUserRepository) *AdminAuthService {
	return &AdminAuthService{admins: admins}
}

// Login verifies credentials and returns a signed token plus the account.
// Unknown email and wrong password return the same error.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if admin == nil || !admin.IsActive {
		return "", nil, utils.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(admin.ID, admin.Email)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// CreateAdmin registers a back-office account with a bcrypt-hashed password.
func (s *AdminAuthService) CreateAdmin(ctx context.Context, email, password, name string) (*models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
