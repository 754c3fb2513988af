package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	models "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/models"
)

type countBucket struct {
	ID    string `bson:"_id" json:"key"`
	Count int    `bson:"count" json:"count"`
}

type deptBucket struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Count int                `bson:"count" json:"count"`
}

// GetDashboard aggregates the numbers the admin dashboard charts are
// built from: totals, programs by status, programs per department,
// registrations per month and the next upcoming approved programs.
func GetDashboard(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		programs := cfg.Collection("programs")

		totalPrograms, err := programs.CountDocuments(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not count programs"})
			return
		}
		totalUsers, _ := cfg.Collection("users").CountDocuments(ctx, bson.M{})
		totalDepartments, _ := cfg.Collection("departments").CountDocuments(ctx, bson.M{})

		// --- Programs by status ---
		byStatus, err := aggregateCounts(ctx, programs, mongo.Pipeline{
			bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
			bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not aggregate statuses"})
			return
		}

		// --- Programs per department (names resolved afterwards) ---
		cursor, err := programs.Aggregate(ctx, mongo.Pipeline{
			bson.D{{Key: "$group", Value: bson.M{"_id": "$department", "count": bson.M{"$sum": 1}}}},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not aggregate departments"})
			return
		}
		var deptCounts []deptBucket
		if err := cursor.All(ctx, &deptCounts); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode department counts"})
			return
		}

		deptNames := map[primitive.ObjectID]string{}
		nameCursor, err := cfg.Collection("departments").Find(ctx, bson.M{})
		if err == nil {
			var depts []models.Department
			if err := nameCursor.All(ctx, &depts); err == nil {
				for _, d := range depts {
					deptNames[d.ID] = d.Name
				}
			}
		}
		type deptCount struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Count int    `json:"count"`
		}
		byDepartment := make([]deptCount, 0, len(deptCounts))
		for _, b := range deptCounts {
			byDepartment = append(byDepartment, deptCount{
				ID:    b.ID.Hex(),
				Name:  deptNames[b.ID],
				Count: b.Count,
			})
		}

		// --- Registrations per month, last 12 months ---
		cutoff := time.Now().AddDate(-1, 0, 0)
		registrations, err := aggregateCounts(ctx, programs, mongo.Pipeline{
			bson.D{{Key: "$unwind", Value: "$participants"}},
			bson.D{{Key: "$match", Value: bson.M{"participants.registered_at": bson.M{"$gte": cutoff}}}},
			bson.D{{Key: "$group", Value: bson.M{
				"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$participants.registered_at"}},
				"count": bson.M{"$sum": 1},
			}}},
			bson.D{{Key: "$sort", Value: bson.M{"_id": 1}}},
		})
		if err != nil {
			// legacy string/null roster entries never match the $match
			// stage, but a broken pipeline should not hide the rest of
			// the dashboard
			logrus.WithError(err).Warn("registration aggregation failed")
			registrations = []countBucket{}
		}

		// --- Upcoming approved programs ---
		opts := options.Find().SetSort(bson.M{"date": 1}).SetLimit(5)
		upcomingCursor, err := programs.Find(ctx, bson.M{
			"status": models.StatusApproved,
			"date":   bson.M{"$gte": time.Now()},
		}, opts)
		var upcoming []models.Program
		if err == nil {
			if err := upcomingCursor.All(ctx, &upcoming); err != nil {
				upcoming = nil
			}
		}
		if upcoming == nil {
			upcoming = []models.Program{}
		}

		c.JSON(http.StatusOK, gin.H{
			"totals": gin.H{
				"programs":    totalPrograms,
				"users":       totalUsers,
				"departments": totalDepartments,
			},
			"programs_by_status":      byStatus,
			"programs_by_department":  byDepartment,
			"registrations_by_month":  registrations,
			"upcoming_programs":       upcoming,
		})
	}
}

func aggregateCounts(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]countBucket, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var buckets []countBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	if buckets == nil {
		buckets = []countBucket{}
	}
	return buckets, nil
}
