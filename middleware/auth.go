package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
)

// Claims carried by access and refresh tokens.
type Claims struct {
	Role        string   `json:"role"`
	Departments []string `json:"departments"`
	TokenType   string   `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and stores the acting
// user's id, role and department memberships on the request context.
// Only HS256 access tokens are accepted.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		tokenStr := strings.TrimSpace(auth[7:])
		var claims Claims

		token, err := jwt.ParseWithClaims(
			tokenStr,
			&claims,
			func(t *jwt.Token) (any, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}
		if claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing subject"})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("role", claims.Role)
		c.Set("departments", claims.Departments)
		c.Next()
	}
}

// DepartmentIDs returns the acting user's department memberships from
// the request context as object ids. Malformed entries are skipped.
func DepartmentIDs(c *gin.Context) []primitive.ObjectID {
	raw, ok := c.Get("departments")
	if !ok {
		return nil
	}
	hexes, ok := raw.([]string)
	if !ok {
		return nil
	}
	var ids []primitive.ObjectID
	for _, h := range hexes {
		if oid, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, oid)
		}
	}
	return ids
}
