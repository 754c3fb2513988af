package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	config "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/config"
	middleware "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/middleware"
	routes "github.com/Ibrahimyahayaibrahim/dopalstech-sub000/routes"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	defer cfg.Disconnect()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Last-Modified", "Content-Disposition"},
		AllowCredentials: true,
	}))

	routes.SetupRoutes(r, cfg)

	logrus.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}
