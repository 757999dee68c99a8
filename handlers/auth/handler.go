package auth

import (
	"time"

	"github.com/academic-system/records-api/model"
	authutil "github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/middleware"
	"gorm.io/gorm"
)

// AuthHandler handles login, token lifecycle and profile endpoints.
type AuthHandler struct {
	db               *gorm.DB
	jwtManager       *authutil.JWTManager
	blacklistService *authutil.BlacklistService
	loginProtection  *middleware.LoginProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, loginProtection *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		db:               db,
		jwtManager:       jwtManager,
		blacklistService: authutil.NewBlacklistService(db),
		loginProtection:  loginProtection,
	}
}

// UserResponse is the account shape returned by auth endpoints.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// loadProfile fetches the role-specific profile row, if the account
// has one. Admin accounts have neither.
func (h *AuthHandler) loadProfile(user *model.User) (*model.Student, *model.Instructor) {
	switch user.Role {
	case model.RoleStudent:
		var student model.Student
		if err := h.db.Where("user_id = ?", user.ID).First(&student).Error; err == nil {
			return &student, nil
		}
	case model.RoleLecturer:
		var instructor model.Instructor
		if err := h.db.Where("user_id = ?", user.ID).First(&instructor).Error; err == nil {
			return nil, &instructor
		}
	}
	return nil, nil
}
