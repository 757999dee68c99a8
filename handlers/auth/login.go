package auth

import (
	"github.com/academic-system/records-api/model"
	authutil "github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response. The role
// profile rides along so clients get the student/instructor id and
// display name without a second request.
type LoginResponse struct {
	User         UserResponse      `json:"user"`
	Student      *model.Student    `json:"student,omitempty"`
	Instructor   *model.Instructor `json:"instructor,omitempty"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	ExpiresIn    int               `json:"expires_in"` // in seconds
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" || req.Password == "" {
		return response.BadRequest(c, "Username and password are required")
	}

	ip := c.IP()

	var user model.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		// Record the failure even for unknown usernames so probing
		// accounts costs attempts.
		if h.loginProtection != nil {
			h.loginProtection.RecordFailure(c, ip)
		}
		return response.Unauthorized(c, "Invalid username or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.loginProtection != nil {
			h.loginProtection.RecordFailure(c, ip)
		}
		return response.Unauthorized(c, "Invalid username or password")
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccess(c, ip)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Username, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	student, instructor := h.loadProfile(&user)

	res := LoginResponse{
		User:         toUserResponse(&user),
		Student:      student,
		Instructor:   instructor,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.jwtManager.AccessExpiry().Seconds()),
	}

	return response.Success(c, res)
}
