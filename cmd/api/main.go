package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorbase/mentor-marketplace/internal/config"
	dbpkg "github.com/mentorbase/mentor-marketplace/internal/db"
	"github.com/mentorbase/mentor-marketplace/internal/jobs"
	"github.com/mentorbase/mentor-marketplace/internal/middleware"
	"github.com/mentorbase/mentor-marketplace/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sweeper := routes.RegisterRoutes(r, db, cfg)

	// Deployments without an external scheduler can run the sweeps in-process.
	if os.Getenv("RUN_SWEEPS") == "true" {
		runner := jobs.NewRunner(sweeper, 5*time.Minute)
		go runner.Start(context.Background())
	}

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
