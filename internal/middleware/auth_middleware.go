package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	autherrors "go-erp/internal/auth/errors"
	"go-erp/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := BearerToken(c)

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		claims, err := ParseAccessToken(tokenString)
		if err != nil {
			errObj := autherrors.ErrInvalidToken
			if strings.Contains(err.Error(), "expired") {
				errObj = autherrors.ErrTokenExpired
			}
			response.Error(c, errObj.HTTPStatus, errObj.Code, errObj.Message, nil)
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("employee_id", claims.EmployeeID)
		c.Set("company_id", claims.CompanyID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// BearerToken mengambil token dari header Authorization atau cookie access_token.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		tokenString = ""
	}

	if tokenString == "" {
		if cookie, err := c.Cookie("access_token"); err == nil {
			tokenString = cookie
		}
	}

	// Client WebSocket di browser tidak bisa set header, token lewat query param
	if tokenString == "" {
		tokenString = c.Query("token")
	}

	return tokenString
}

type AccessClaims struct {
	UserID     string
	EmployeeID string
	CompanyID  string
	Role       string
}

func ParseAccessToken(tokenString string) (AccessClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = fmt.Errorf("invalid token")
		}
		return AccessClaims{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AccessClaims{}, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return AccessClaims{}, fmt.Errorf("user_id not found in token")
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return AccessClaims{}, fmt.Errorf("company_id not found in token")
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return AccessClaims{}, fmt.Errorf("employee_id not found in token")
	}

	role, _ := claims["role"].(string)

	return AccessClaims{
		UserID:     userID,
		EmployeeID: employeeID,
		CompanyID:  companyID,
		Role:       role,
	}, nil
}
