package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	middleware "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/middleware"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
)

func issueToken(cfg *config.Config, user models.User, tokenType string, ttl time.Duration) (string, error) {
	depts := make([]string, 0, len(user.Departments))
	for _, d := range user.Departments {
		depts = append(depts, d.Hex())
	}

	claims := middleware.Claims{
		Role:        user.Role,
		Departments: depts,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

func tokenPair(cfg *config.Config, user models.User) (gin.H, error) {
	access, err := issueToken(cfg, user, "access", cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := issueToken(cfg, user, "refresh", cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	}, nil
}

// ---------------- REGISTER ----------------
func Register(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name        string   `json:"name" binding:"required"`
			Email       string   `json:"email" binding:"required,email"`
			Phone       string   `json:"phone"`
			Password    string   `json:"password" binding:"required,min=8"`
			Departments []string `json:"departments"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// reject duplicate email
		count, err := col.CountDocuments(ctx, bson.M{"email": input.Email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check existing users"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
			return
		}

		var depts []primitive.ObjectID
		for _, h := range input.Departments {
			oid, err := primitive.ObjectIDFromHex(h)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
				return
			}
			depts = append(depts, oid)
		}

		now := time.Now()
		user := models.User{
			ID:           primitive.NewObjectID(),
			Name:         input.Name,
			Email:        input.Email,
			Phone:        input.Phone,
			PasswordHash: string(hash),
			Role:         models.RoleStaff, // elevated later by a super-admin
			Departments:  depts,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if _, err := col.InsertOne(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
			return
		}

		resp, err := tokenPair(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// ---------------- LOGIN ----------------
func Login(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		err := cfg.Collection("users").FindOne(ctx, bson.M{"email": input.Email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch user"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		resp, err := tokenPair(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ---------------- REFRESH ----------------
func RefreshToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var claims middleware.Claims
		token, err := jwt.ParseWithClaims(
			input.RefreshToken,
			&claims,
			func(t *jwt.Token) (any, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid || claims.TokenType != "refresh" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
			return
		}

		// re-read the user so role/department changes take effect
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := cfg.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user no longer exists"})
			return
		}

		resp, err := tokenPair(cfg, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
