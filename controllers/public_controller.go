package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
	utils "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/utils"
)

var validate = validator.New()

func fetchProgramBySlug(cfg *config.Config, ctx context.Context, slug string) (*models.Program, error) {
	var p models.Program
	err := cfg.Collection("programs").FindOne(ctx, bson.M{"registration.link_slug": slug}).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ---------------- PUBLIC PROGRAM PAGE ----------------
func GetPublicProgram(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		program, err := fetchProgramBySlug(cfg, ctx, slug)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}
		parent := fetchParent(cfg, ctx, program)

		c.JSON(http.StatusOK, gin.H{
			"name":              program.DisplayName(parent),
			"description":       program.Description,
			"date":              program.Date,
			"venue":             program.Venue,
			"registration_open": program.RegistrationOpenAt(time.Now()),
			"deadline":          program.Registration.Deadline,
			"form_fields":       models.EffectiveSchema(program, parent),
		})
	}
}

// ---------------- PUBLIC REGISTRATION ----------------
func RegisterPublic(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		program, err := fetchProgramBySlug(cfg, ctx, slug)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		// the gate is checked on every attempt: a deadline can pass
		// between page load and submission
		if !program.RegistrationOpenAt(time.Now()) {
			c.JSON(http.StatusForbidden, gin.H{"error": "registration is closed for this program"})
			return
		}

		var sub models.Submission
		if err := c.ShouldBindJSON(&sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		parent := fetchParent(cfg, ctx, program)
		fields := models.EffectiveSchema(program, parent)

		problems := models.ValidateSubmission(fields, sub)
		if sub.Email != "" {
			if err := validate.Var(sub.Email, "email"); err != nil {
				problems["email"] = "email address is not valid"
			}
		}
		if len(problems) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": problems})
			return
		}

		participant := models.Participant{
			ID:             primitive.NewObjectID(),
			FullName:       sub.FullName,
			Email:          sub.Email,
			Phone:          sub.Phone,
			Gender:         sub.Answers["gender"],
			AgeGroup:       sub.Answers["age_group"],
			State:          sub.Answers["state"],
			Organization:   sub.Answers["organization"],
			ReferralSource: sub.Answers["referral_source"],
			Answers:        sub.Answers,
			RegisteredAt:   time.Now(),
		}

		res, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": program.ID}, bson.M{
			"$push": bson.M{"participants": models.StructuredEntry(participant)},
			"$set":  bson.M{"updated_at": time.Now()},
		})
		if err != nil || res.MatchedCount == 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save registration"})
			return
		}

		// confirmation email is fire-and-forget; delivery failures are
		// logged and never block the response
		if participant.Email != "" {
			name := program.DisplayName(parent)
			body := fmt.Sprintf(
				"<p>Hello %s,</p><p>Your registration for <strong>%s</strong> has been received.</p>",
				participant.FullName, name,
			)
			utils.SendEmailAsync(participant.Email, nil, "Registration received: "+name, body)
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "registration received",
			"id":      participant.ID.Hex(),
		})
	}
}
