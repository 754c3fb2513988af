package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
	utils "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/utils"
)

const bccBatchSize = 50

// ---------------- SEND ----------------
func SendBroadcast(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		var input struct {
			Subject   string   `json:"subject" binding:"required"`
			HTML      string   `json:"html" binding:"required"`
			ProgramID string   `json:"program_id"`
			Emails    []string `json:"emails"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Resolve recipients: program roster or explicit list ---
		recipients := input.Emails
		var programID *primitive.ObjectID
		if input.ProgramID != "" {
			oid, err := primitive.ObjectIDFromHex(input.ProgramID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
				return
			}
			program, err := fetchProgram(cfg, ctx, oid)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
				return
			}
			programID = &oid
			recipients = append(recipients, models.RosterEmails(program.Participants)...)
		}
		if len(recipients) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no recipients resolved"})
			return
		}

		// the sender goes in "to"; recipients ride in bcc so the list
		// stays private
		var sender models.User
		if err := cfg.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&sender); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "sending user not found"})
			return
		}

		failed := 0
		for start := 0; start < len(recipients); start += bccBatchSize {
			end := start + bccBatchSize
			if end > len(recipients) {
				end = len(recipients)
			}
			if err := utils.SendEmail(sender.Email, recipients[start:end], input.Subject, input.HTML); err != nil {
				logrus.WithError(err).WithField("batch", start/bccBatchSize).Warn("broadcast batch failed")
				failed += end - start
			}
		}

		record := models.Broadcast{
			ID:        primitive.NewObjectID(),
			Subject:   input.Subject,
			HTML:      input.HTML,
			To:        sender.Email,
			BccCount:  len(recipients),
			Failed:    failed,
			ProgramID: programID,
			SentBy:    userID,
			SentAt:    time.Now(),
		}
		if _, err := cfg.Collection("broadcasts").InsertOne(ctx, record); err != nil {
			logrus.WithError(err).Warn("could not record broadcast")
		}

		c.JSON(http.StatusOK, gin.H{
			"message":    "broadcast sent",
			"recipients": len(recipients),
			"failed":     failed,
		})
	}
}

// ---------------- HISTORY ----------------
func ListBroadcasts(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.M{"sent_at": -1}).SetLimit(100)
		cursor, err := cfg.Collection("broadcasts").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch broadcasts"})
			return
		}

		var broadcasts []models.Broadcast
		if err := cursor.All(ctx, &broadcasts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode broadcasts"})
			return
		}
		if broadcasts == nil {
			broadcasts = []models.Broadcast{}
		}

		c.JSON(http.StatusOK, broadcasts)
	}
}
