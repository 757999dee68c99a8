package middleware

import (
	"strings"

	"github.com/academic-system/records-api/model"
	"github.com/academic-system/records-api/utils/auth"
	"github.com/academic-system/records-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication. The token carries only the
// user id; role and the student/instructor identity are loaded from the
// database on every request.
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// Required is middleware that requires a valid JWT access token.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get token from Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		tokenString := parts[1]

		// Validate token
		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			if err == auth.ErrExpiredToken {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		// Check if it's an access token
		if claims.TokenType != "access" {
			return response.Unauthorized(c, "Invalid token type")
		}

		// Check if token is revoked (blacklisted)
		isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
		if err != nil {
			return response.InternalServerError(c, "Failed to check token status")
		}
		if isRevoked {
			return response.Unauthorized(c, "Token has been revoked")
		}

		// Load user from database and verify token version
		var user model.User
		if err := m.db.First(&user, claims.UserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Unauthorized(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to load user")
		}

		// Check if token version matches
		if user.TokenVersion != claims.TokenVersion {
			return response.Unauthorized(c, "Token has been invalidated")
		}

		c.Locals("user_id", user.ID)
		c.Locals("username", user.Username)
		c.Locals("user_role", user.Role)
		c.Locals("user", &user)
		c.Locals("token_jti", claims.ID)

		return c.Next()
	}
}

// RequireAdmin requires an authenticated user with the admin role.
// Runs after Required.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "Not authenticated")
		}
		if user.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// RequireStudent requires the student role and loads the active student
// profile behind the account. Runs after Required.
func (m *AuthMiddleware) RequireStudent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "Not authenticated")
		}
		if user.Role != model.RoleStudent {
			return response.Forbidden(c, "Student access required")
		}

		var student model.Student
		if err := m.db.Where("user_id = ?", user.ID).First(&student).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Forbidden(c, "No student profile for this account")
			}
			return response.InternalServerError(c, "Failed to load student profile")
		}
		if !student.IsActive {
			return response.Forbidden(c, "Student account is deactivated")
		}

		c.Locals("student", &student)
		return c.Next()
	}
}

// RequireLecturer requires the lecturer role and loads the active
// instructor profile behind the account. Runs after Required.
func (m *AuthMiddleware) RequireLecturer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "Not authenticated")
		}
		if user.Role != model.RoleLecturer {
			return response.Forbidden(c, "Lecturer access required")
		}

		var instructor model.Instructor
		if err := m.db.Where("user_id = ?", user.ID).First(&instructor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return response.Forbidden(c, "No instructor profile for this account")
			}
			return response.InternalServerError(c, "Failed to load instructor profile")
		}
		if !instructor.IsActive {
			return response.Forbidden(c, "Instructor account is deactivated")
		}

		c.Locals("instructor", &instructor)
		return c.Next()
	}
}

// GetUser extracts the authenticated user from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	user := c.Locals("user")
	if user == nil {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetStudent extracts the student profile from context
func GetStudent(c *fiber.Ctx) (*model.Student, bool) {
	student := c.Locals("student")
	if student == nil {
		return nil, false
	}
	s, ok := student.(*model.Student)
	return s, ok
}

// GetInstructor extracts the instructor profile from context
func GetInstructor(c *fiber.Ctx) (*model.Instructor, bool) {
	instructor := c.Locals("instructor")
	if instructor == nil {
		return nil, false
	}
	i, ok := instructor.(*model.Instructor)
	return i, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
