package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config carries everything handlers need: the Mongo client plus the
// environment-derived settings. One instance is built at startup and
// passed down through the route setup.
type Config struct {
	MongoClient *mongo.Client
	DBName      string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Port           string
	AllowedOrigins []string
}

// Load reads .env (if present), connects to MongoDB and returns the
// assembled Config. Missing critical settings are fatal.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment variables")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "dopalstech"
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to MongoDB")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logrus.WithError(err).Fatal("failed to ping MongoDB")
	}
	logrus.WithField("db", dbName).Info("connected to MongoDB")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// wildcard origins cannot be combined with credentials, so the
	// dashboard origin must be listed explicitly
	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return &Config{
		MongoClient:    client,
		DBName:         dbName,
		JWTSecret:      secret,
		AccessTTL:      durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:     durationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		Port:           port,
		AllowedOrigins: origins,
	}
}

// Collection is a shorthand used by every controller.
func (c *Config) Collection(name string) *mongo.Collection {
	return c.MongoClient.Database(c.DBName).Collection(name)
}

// Disconnect closes the Mongo connection, used on shutdown.
func (c *Config) Disconnect() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.MongoClient.Disconnect(ctx); err != nil {
		logrus.WithError(err).Warn("error disconnecting from MongoDB")
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logrus.WithField("key", key).Warnf("invalid duration %q, using default", raw)
		return fallback
	}
	return d
}
