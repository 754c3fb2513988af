package controllers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	middleware "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/middleware"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
	utils "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/utils"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	var firstErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		} else if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// canEditProgram: creator before completion, or any admin.
func canEditProgram(role, userID string, p *models.Program) bool {
	if role == models.RoleSuperAdmin || role == models.RoleAdmin {
		return true
	}
	return p.CreatedBy.Hex() == userID && p.Status != models.StatusCompleted
}

func fetchProgram(cfg *config.Config, ctx context.Context, id primitive.ObjectID) (*models.Program, error) {
	var p models.Program
	err := cfg.Collection("programs").FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func fetchParent(cfg *config.Config, ctx context.Context, p *models.Program) *models.Program {
	if p.ParentProgram == nil {
		return nil
	}
	parent, err := fetchProgram(cfg, ctx, *p.ParentProgram)
	if err != nil {
		logrus.WithField("program", p.ID.Hex()).Warn("parent program not found")
		return nil
	}
	return parent
}

// ---------------- CREATE ----------------
func CreateProgram(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		// --- Bind form fields ---
		var input struct {
			Name              string  `form:"name" binding:"required"`
			Description       string  `form:"description"`
			Objectives        string  `form:"objectives"`
			Structure         string  `form:"structure" binding:"required"`
			Department        string  `form:"department"`
			Cost              float64 `form:"cost"`
			Venue             string  `form:"venue"`
			ParticipantsCount int     `form:"participants_count"`
			Date              string  `form:"date"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		structure := models.Structure(input.Structure)
		if !structure.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "structure must be One-Time, Recurring or Numerical"})
			return
		}

		date, err := parseDate(input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
			return
		}

		// --- Resolve department: explicit param, else acting user's first ---
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var deptID primitive.ObjectID
		if input.Department != "" {
			deptID, err = primitive.ObjectIDFromHex(input.Department)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
				return
			}
		} else if own := middleware.DepartmentIDs(c); len(own) > 0 {
			deptID = own[0]
			logrus.WithField("department", deptID.Hex()).Warn("program department defaulted to user's first department")
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "department could not be resolved"})
			return
		}

		if n, err := cfg.Collection("departments").CountDocuments(ctx, bson.M{"_id": deptID}); err != nil || n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "department not found"})
			return
		}

		// --- Handle file uploads ---
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}

		flyerURL, proposalURL := "", ""
		if form != nil {
			if files := form.File["flyer"]; len(files) > 0 {
				url, err := uploadFileHeader(files[0], "flyers")
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "flyer upload failed", "details": err.Error()})
					return
				}
				flyerURL = url
			}
			if files := form.File["proposal"]; len(files) > 0 {
				url, err := uploadFileHeader(files[0], "proposals")
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "proposal upload failed", "details": err.Error()})
					return
				}
				proposalURL = url
			}
		}

		// --- Save program ---
		now := time.Now()
		program := models.Program{
			ID:                primitive.NewObjectID(),
			Name:              input.Name,
			Description:       input.Description,
			Objectives:        input.Objectives,
			Status:            models.StatusPending,
			Structure:         structure,
			Department:        deptID,
			CreatedBy:         userID,
			Cost:              input.Cost,
			Venue:             input.Venue,
			ParticipantsCount: input.ParticipantsCount,
			Date:              date,
			FlyerURL:          flyerURL,
			ProposalURL:       proposalURL,
			Registration: models.Registration{
				IsOpen:   true,
				LinkSlug: uuid.NewString(),
			},
			Participants: []models.ParticipantEntry{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if _, err := cfg.Collection("programs").InsertOne(ctx, program); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create program"})
			return
		}

		c.JSON(http.StatusCreated, program)
	}
}

func uploadFileHeader(fileHeader *multipart.FileHeader, folder string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	return utils.UploadToCloudinary(file, folder)
}

// ---------------- LIST ----------------
func ListPrograms(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		col := cfg.Collection("programs")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Build filter ---
		filter := bson.M{}
		if q := c.Query("q"); q != "" {
			filter["name"] = bson.M{"$regex": q, "$options": "i"}
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}
		if structure := c.Query("structure"); structure != "" {
			filter["structure"] = structure
		}
		if dept := c.Query("department"); dept != "" {
			if oid, err := primitive.ObjectIDFromHex(dept); err == nil {
				filter["department"] = oid
			}
		}

		// --- Fetch data ---
		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch programs"})
			return
		}

		var programs []models.Program
		if err := cursor.All(ctx, &programs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode programs"})
			return
		}

		if len(programs) == 0 {
			c.JSON(http.StatusOK, []models.Program{})
			return
		}

		// --- Pick the most recently updated program ---
		latest := programs[0]
		for _, p := range programs {
			if p.UpdatedAt.After(latest.UpdatedAt) {
				latest = p
			}
		}

		// --- Generate ETag from latest program ---
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		// --- Resolve display names for versions ---
		parentIDs := []primitive.ObjectID{}
		for _, p := range programs {
			if p.ParentProgram != nil {
				parentIDs = append(parentIDs, *p.ParentProgram)
			}
		}
		parents := map[primitive.ObjectID]*models.Program{}
		if len(parentIDs) > 0 {
			pc, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": parentIDs}})
			if err == nil {
				var docs []models.Program
				if err := pc.All(ctx, &docs); err == nil {
					for i := range docs {
						parents[docs[i].ID] = &docs[i]
					}
				}
			}
		}

		type listItem struct {
			models.Program
			DisplayName string            `json:"display_name"`
			SeriesKind  models.SeriesKind `json:"series_kind"`
		}
		items := make([]listItem, 0, len(programs))
		for _, p := range programs {
			var parent *models.Program
			if p.ParentProgram != nil {
				parent = parents[*p.ParentProgram]
			}
			items = append(items, listItem{
				Program:     p,
				DisplayName: p.DisplayName(parent),
				SeriesKind:  p.Classify(),
			})
		}

		c.JSON(http.StatusOK, items)
	}
}

// ---------------- GET ----------------
func GetProgram(cfg *config.Config) gin.HandlerFunc {
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
		parent := fetchParent(cfg, ctx, program)

		etag := utils.GenerateETag(program.ID, program.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		c.JSON(http.StatusOK, gin.H{
			"program":      program,
			"display_name": program.DisplayName(parent),
			"series_kind":  program.Classify(),
			"form_fields":  models.EffectiveSchema(program, parent),
		})
	}
}

// ---------------- UPDATE ----------------
func UpdateProgram(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		existing, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}
		if !canEditProgram(role, requesterID, existing) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		var input struct {
			Name              string  `form:"name"`
			Description       string  `form:"description"`
			Objectives        string  `form:"objectives"`
			Structure         string  `form:"structure"`
			CustomSuffix      string  `form:"custom_suffix"`
			Cost              float64 `form:"cost"`
			Venue             string  `form:"venue"`
			ParticipantsCount int     `form:"participants_count"`
			Date              string  `form:"date"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// structure is immutable after creation
		if input.Structure != "" && models.Structure(input.Structure) != existing.Structure {
			c.JSON(http.StatusBadRequest, gin.H{"error": "structure cannot be changed after creation"})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		if input.Name != "" {
			update["name"] = input.Name
		}
		if input.Description != "" {
			update["description"] = input.Description
		}
		if input.Objectives != "" {
			update["objectives"] = input.Objectives
		}
		if input.CustomSuffix != "" {
			update["custom_suffix"] = input.CustomSuffix
		}
		if input.Cost > 0 {
			update["cost"] = input.Cost
		}
		if input.Venue != "" {
			update["venue"] = input.Venue
		}
		if input.ParticipantsCount > 0 {
			update["participants_count"] = input.ParticipantsCount
		}
		if input.Date != "" {
			date, err := parseDate(input.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			update["date"] = date
		}

		// --- Handle replacement file uploads ---
		form, _ := c.MultipartForm()
		if form != nil {
			if files := form.File["flyer"]; len(files) > 0 {
				url, err := uploadFileHeader(files[0], "flyers")
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "flyer upload failed", "details": err.Error()})
					return
				}
				if existing.FlyerURL != "" {
					if err := utils.DeleteFromCloudinary(existing.FlyerURL); err != nil {
						logrus.WithError(err).Warn("could not delete old flyer")
					}
				}
				update["flyer_url"] = url
			}
			if files := form.File["proposal"]; len(files) > 0 {
				url, err := uploadFileHeader(files[0], "proposals")
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "proposal upload failed", "details": err.Error()})
					return
				}
				if existing.ProposalURL != "" {
					if err := utils.DeleteFromCloudinary(existing.ProposalURL); err != nil {
						logrus.WithError(err).Warn("could not delete old proposal")
					}
				}
				update["proposal_url"] = url
			}
		}

		if len(update) == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		if _, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update program"})
			return
		}

		updated, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated program"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "program updated", "program": updated})
	}
}

// ---------------- DELETE ----------------
func DeleteProgram(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		existing, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		// versions must be deleted before their master
		if n, err := cfg.Collection("programs").CountDocuments(ctx, bson.M{"parent_program": oid}); err == nil && n > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "program still has versions"})
			return
		}

		res, err := cfg.Collection("programs").DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete program"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		for _, fileURL := range []string{existing.FlyerURL, existing.ProposalURL} {
			if fileURL == "" {
				continue
			}
			if err := utils.DeleteFromCloudinary(fileURL); err != nil {
				logrus.WithError(err).WithField("url", fileURL).Warn("could not delete uploaded file")
			}
		}
		if existing.FinalReport != nil && existing.FinalReport.ReportURL != "" {
			if err := utils.DeleteFromCloudinary(existing.FinalReport.ReportURL); err != nil {
				logrus.WithError(err).Warn("could not delete report file")
			}
		}

		c.JSON(http.StatusOK, gin.H{"message": "program deleted", "id": oid.Hex()})
	}
}

// ---------------- STATUS ----------------
func SetProgramStatus(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		var input struct {
			Status           string `form:"status" binding:"required"`
			ActualAttendance string `form:"actual_attendance"`
			StartDate        string `form:"start_date"`
			EndDate          string `form:"end_date"`
			MediaLink        string `form:"media_link"`
			Summary          string `form:"summary"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		next := models.Status(input.Status)
		if !next.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		program, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		// --- Authorization: super-admin, or admin of the program's department ---
		if !models.CanModerate(role, middleware.DepartmentIDs(c), program.Department) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		// --- Transition guard ---
		if !program.Status.CanTransitionTo(next) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "invalid status transition",
				"from":  program.Status,
				"to":    next,
			})
			return
		}

		update := bson.M{"status": next, "updated_at": time.Now()}

		// --- Completion requirements, enforced at the API boundary ---
		if next == models.StatusCompleted {
			fields := map[string]string{}

			attendance, err := strconv.Atoi(input.ActualAttendance)
			if input.ActualAttendance == "" || err != nil || attendance < 0 {
				fields["actual_attendance"] = "actual attendance must be a non-negative integer"
			}
			startDate, err := parseDate(input.StartDate)
			if err != nil || startDate == nil {
				fields["start_date"] = "start date is required"
			}
			endDate, err := parseDate(input.EndDate)
			if err != nil || endDate == nil {
				fields["end_date"] = "end date is required"
			}

			reportURL := ""
			form, _ := c.MultipartForm()
			if form != nil {
				if files := form.File["report"]; len(files) > 0 {
					url, err := uploadFileHeader(files[0], "reports")
					if err != nil {
						c.JSON(http.StatusInternalServerError, gin.H{"error": "report upload failed", "details": err.Error()})
						return
					}
					reportURL = url
				}
			}
			if reportURL == "" && input.MediaLink == "" {
				fields["report"] = "an uploaded report document or a media link is required"
			}

			if len(fields) > 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "completion requirements not met", "fields": fields})
				return
			}

			update["actual_attendance"] = attendance
			update["start_date"] = startDate
			update["end_date"] = endDate
			update["final_report"] = models.FinalReport{
				ReportURL: reportURL,
				MediaLink: input.MediaLink,
				Summary:   input.Summary,
			}
		}

		if _, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "status updated", "id": oid.Hex(), "status": next})
	}
}

// ---------------- VERSIONS ----------------
func CreateProgramVersion(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		parentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		var input struct {
			CustomSuffix      string  `json:"custom_suffix"`
			Date              string  `json:"date"`
			Department        string  `json:"department"`
			Venue             string  `json:"venue"`
			Cost              float64 `json:"cost"`
			ParticipantsCount int     `json:"participants_count"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		parent, err := fetchProgram(cfg, ctx, parentID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}
		if parent.Classify() != models.SeriesMaster {
			c.JSON(http.StatusBadRequest, gin.H{"error": "versions can only be created under a recurring or numerical master"})
			return
		}

		date, err := parseDate(input.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use RFC3339 or YYYY-MM-DD"})
			return
		}

		// --- Department fallback chain: explicit, parent's, user's first ---
		var deptID primitive.ObjectID
		switch {
		case input.Department != "":
			deptID, err = primitive.ObjectIDFromHex(input.Department)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid department id"})
				return
			}
		case !parent.Department.IsZero():
			deptID = parent.Department
		default:
			own := middleware.DepartmentIDs(c)
			if len(own) == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "department could not be resolved"})
				return
			}
			deptID = own[0]
			logrus.WithFields(logrus.Fields{
				"parent":     parentID.Hex(),
				"department": deptID.Hex(),
			}).Warn("version department defaulted to user's first department")
		}

		now := time.Now()
		version := models.Program{
			ID:                primitive.NewObjectID(),
			Name:              parent.Name,
			Description:       parent.Description,
			Objectives:        parent.Objectives,
			Status:            models.StatusPending,
			Structure:         parent.Structure,
			ParentProgram:     &parentID,
			CustomSuffix:      input.CustomSuffix,
			Department:        deptID,
			CreatedBy:         userID,
			Cost:              input.Cost,
			Venue:             input.Venue,
			ParticipantsCount: input.ParticipantsCount,
			Date:              date,
			Registration: models.Registration{
				IsOpen:   true,
				LinkSlug: uuid.NewString(),
			},
			Participants: []models.ParticipantEntry{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if _, err := cfg.Collection("programs").InsertOne(ctx, version); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create version"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"program":      version,
			"display_name": version.DisplayName(parent),
		})
	}
}

func ListProgramVersions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		parentID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		parent, err := fetchProgram(cfg, ctx, parentID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		cursor, err := cfg.Collection("programs").Find(ctx, bson.M{"parent_program": parentID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch versions"})
			return
		}

		var versions []models.Program
		if err := cursor.All(ctx, &versions); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode versions"})
			return
		}

		type versionItem struct {
			models.Program
			DisplayName string `json:"display_name"`
		}
		items := make([]versionItem, 0, len(versions))
		for _, v := range versions {
			items = append(items, versionItem{Program: v, DisplayName: v.DisplayName(parent)})
		}

		c.JSON(http.StatusOK, items)
	}
}

// ---------------- UPDATES ----------------
func AddProgramUpdate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		var input struct {
			Text string `json:"text" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		note := models.ProgramUpdate{User: userID, Text: input.Text, Date: time.Now()}
		res, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
			"$push": bson.M{"updates": note},
			"$set":  bson.M{"updated_at": time.Now()},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add update"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}

		c.JSON(http.StatusCreated, note)
	}
}

// ---------------- REGISTRATION SETTINGS ----------------
func UpdateRegistrationSettings(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid program id"})
			return
		}

		// IsOpen, Deadline and FormFields are independent operations;
		// absent fields are left untouched. ClearDeadline removes a
		// deadline explicitly since a null can't be told apart from
		// "not provided".
		var input struct {
			IsOpen        *bool              `json:"is_open"`
			Deadline      *string            `json:"deadline"`
			ClearDeadline bool               `json:"clear_deadline"`
			FormFields    *[]models.FieldDef `json:"form_fields"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		program, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "program not found"})
			return
		}
		if !canEditProgram(role, requesterID, program) {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		update := bson.M{"updated_at": time.Now()}
		unset := bson.M{}

		if input.IsOpen != nil {
			update["registration.is_open"] = *input.IsOpen
			if *input.IsOpen && program.Registration.LinkSlug == "" {
				update["registration.link_slug"] = uuid.NewString()
			}
		}
		if input.ClearDeadline {
			unset["registration.deadline"] = ""
		} else if input.Deadline != nil && *input.Deadline != "" {
			deadline, err := parseDate(*input.Deadline)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			update["registration.deadline"] = deadline
		}
		if input.FormFields != nil {
			for _, f := range *input.FormFields {
				if f.Label == "" {
					c.JSON(http.StatusBadRequest, gin.H{"error": "form field label is required"})
					return
				}
				if !models.ValidFieldType(f.FieldType) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "unknown field type: " + f.FieldType})
					return
				}
				if f.FieldType == "select" && len(f.Options) == 0 {
					c.JSON(http.StatusBadRequest, gin.H{"error": "select field needs at least one option: " + f.Label})
					return
				}
			}
			update["registration.form_fields"] = *input.FormFields
		}

		if len(update) == 1 && len(unset) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
			return
		}

		ops := bson.M{"$set": update}
		if len(unset) > 0 {
			ops["$unset"] = unset
		}
		if _, err := cfg.Collection("programs").UpdateOne(ctx, bson.M{"_id": oid}, ops); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update registration settings"})
			return
		}

		updated, err := fetchProgram(cfg, ctx, oid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve updated program"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "registration settings updated", "registration": updated.Registration})
	}
}
