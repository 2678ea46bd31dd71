package ds

import (
	"factoring-backend/internal/app/role"

	"github.com/golang-jwt/jwt"
)

type JWTClaims struct {
	jwt.StandardClaims
	UserID    uint `json:"user_id"`
	CompanyID uint `json:"company_id"`
	Role      role.Role
}
