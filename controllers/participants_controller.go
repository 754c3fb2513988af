package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
	utils "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/utils"
)

// ---------------- LIST ----------------
func ListParticipants(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		program, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"participants": program.Participants,
			"count":        len(program.Participants),
		})
	}
}

// ---------------- ADD (manual entry) ----------------
func AddParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		var input models.Participant
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if input.Email == "" && input.Phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one of email or phone is required"})
			return
		}

		input.ID = primitive.NewObjectID()
		input.RegisteredAt = time.Now()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
			"$push": bson.M{"participants": models.StructuredEntry(input)},
			"$set":  bson.M{"updated_at": time.Now()},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add participant"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		c.JSON(http.StatusCreated, input)
	}
}

// ---------------- IMPORT (CSV) ----------------
func ImportParticipants(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
			return
		}
		defer file.Close()

		participants, dropped, err := utils.ParseParticipantsCSV(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse csv", "details": err.Error()})
			return
		}
		if len(participants) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no importable rows found", "dropped": dropped})
			return
		}

		now := time.Now()
		entries := make([]models.ParticipantEntry, 0, len(participants))
		for _, p := range participants {
			p.ID = primitive.NewObjectID()
			p.RegisteredAt = now
			entries = append(entries, models.StructuredEntry(p))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
			"$push": bson.M{"participants": bson.M{"$each": entries}},
			"$set":  bson.M{"updated_at": now},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not import participants"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "participants imported",
			"imported": len(entries),
			"dropped":  dropped,
		})
	}
}

// ---------------- EXPORT (CSV) ----------------
func ExportParticipants(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		program, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		var buf bytes.Buffer
		if err := utils.WriteParticipantsCSV(&buf, program.Participants); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not build csv"})
			return
		}

		filename := fmt.Sprintf("participants-%s.csv", oid.Hex())
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	}
}

// ---------------- REMOVE ----------------
func RemoveParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		// Legacy string and null entries carry no identifier, so they
		// can never be addressed here. Surface that instead of crashing
		// or silently pulling the wrong entry.
		participantID, err := primitive.ObjectIDFromHex(c.Param("participantId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "this participant entry has no identifier (legacy record) and cannot be removed",
			})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		program, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		if models.FindParticipant(program.Participants, participantID) < 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
			return
		}

		_, err = cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
			"$pull": bson.M{"participants": bson.M{"_id": participantID}},
			"$set":  bson.M{"updated_at": time.Now()},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove participant"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "participant removed", "id": participantID.Hex()})
	}
}
