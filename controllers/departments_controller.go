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

// ---------------- CREATE ----------------
func CreateDepartment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var input struct {
			Name        string `json:"name" binding:"required"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		col := cfg.Collection("departments")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		count, err := col.CountDocuments(ctx, bson.M{"name": input.Name})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check existing departments"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "department already exists"})
			return
		}

		now := time.Now()
		dept := models.Department{
			ID:          primitive.NewObjectID(),
			Name:        input.Name,
			Description: input.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if _, err := col.InsertOne(ctx, dept); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create department"})
			return
		}

		c.JSON(http.StatusCreated, dept)
	}
}

// ---------------- LIST ----------------
func ListDepartments(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := cfg.Collection("departments").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch departments"})
			return
		}

		var departments []models.Department
		if err := cursor.All(ctx, &departments); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode departments"})
			return
		}
		if departments == nil {
			departments = []models.Department{}
		}

		c.JSON(http.StatusOK, departments)
	}
}

// ---------------- GET ----------------
func GetDepartment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var dept models.Department
		if err := cfg.Collection("departments").FindOne(ctx, bson.M{"_id": oid}).Decode(&dept); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
			return
		}

		c.JSON(http.StatusOK, dept)
	}
}

// ---------------- UPDATE ----------------
func UpdateDepartment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
			return
		}

		var input struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Name != "" {
			update["name"] = input.Name
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("departments").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update department"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "department updated", "id": oid.Hex()})
	}
}

// ---------------- DELETE ----------------
func DeleteDepartment(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// refuse to orphan programs
		count, err := cfg.Collection("programs").CountDocuments(ctx, bson.M{"department": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check department usage"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "department still has programs assigned"})
			return
		}

		res, err := cfg.Collection("departments").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete department"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "department not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "department deleted", "id": oid.Hex()})
	}
}
