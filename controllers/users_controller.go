package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
)

// ---------------- LIST ----------------
func ListUsers(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.Collection("users")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Build filter ---
		filter := bson.M{}
		if q := c.Query("q"); q != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": q, "$options": "i"}},
				{"email": bson.M{"$regex": q, "$options": "i"}},
			}
		}
		if dept := c.Query("department"); dept != "" {
			if oid, err := primitive.ObjectIDFromHex(dept); err == nil {
				filter["departments"] = oid
			}
		}
		if role := c.Query("role"); role != "" {
			filter["role"] = role
		}

		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch users"})
			return
		}

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode users"})
			return
		}
		if users == nil {
			users = []models.User{}
		}

		c.JSON(http.StatusOK, users)
	}
}

// ---------------- GET ----------------
func GetUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := cfg.Collection("users").FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

// ---------------- UPDATE ----------------
func UpdateUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		// users may edit their own profile; role and department changes
		// are reserved for super-admins
		var input struct {
			Name        string    `json:"name"`
			Phone       string    `json:"phone"`
			Role        string    `json:"role"`
			Departments *[]string `json:"departments"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if role != models.RoleSuperAdmin && requesterID != oid.Hex() {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Name != "" {
			update["name"] = input.Name
		}
		if input.Phone != "" {
			update["phone"] = input.Phone
		}
		if input.Role != "" {
			if role != models.RoleSuperAdmin {
				c.JSON(http.StatusForbidden, gin.H{"error": "only a super-admin can change roles"})
				return
			}
			if input.Role != models.RoleSuperAdmin && input.Role != models.RoleAdmin && input.Role != models.RoleStaff {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
				return
			}
			update["role"] = input.Role
		}
		if input.Departments != nil {
			if role != models.RoleSuperAdmin {
				c.JSON(http.StatusForbidden, gin.H{"error": "only a super-admin can change departments"})
				return
			}
			var depts []primitive.ObjectID
			for _, h := range *input.Departments {
				d, err := primitive.ObjectIDFromHex(h)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
					return
				}
				depts = append(depts, d)
			}
			update["departments"] = depts
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("users").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update user"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user updated", "id": oid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteUser(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("users").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user deleted", "id": oid.Hex()})
	}
}
