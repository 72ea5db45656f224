package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"paintdash/scheduler-api/config"
	"paintdash/scheduler-api/handlers"
	"paintdash/scheduler-api/internal/decision"
	"paintdash/scheduler-api/internal/notify"
	"paintdash/scheduler-api/internal/store"
	"paintdash/scheduler-api/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.InitLogger(cfg.LogLevel)

	if err := config.InitSupabase(cfg); err != nil {
		log.Fatalf("Failed to initialize Supabase: %v", err)
	}
	pg, err := config.NewPostgrestClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize PostgREST client: %v", err)
	}

	st := store.New(pg, config.Log)
	notifier := notify.NewAdminNotifier(
		st,
		notify.SupabaseInbox{DB: config.SupabaseClient},
		notify.NewEdgeFunctionSender(cfg.SupabaseURL, cfg.SupabaseKey),
		config.Log,
	)
	submitter := decision.NewSubmitter(st, notifier, config.Log)
	h := handlers.NewApplicationHandler(st, submitter, config.Log)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(config.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Scheduler API is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")

	scheduler := apiV1.Group("/scheduler")
	scheduler.Get("/board", h.GetBoard)
	scheduler.Post("/assignments", h.SaveAssignments)

	apiV1.Get("/subcontractors", h.ListSubcontractors)
	apiV1.Get("/subcontractors/:id/next-available", h.NextAvailable)
	apiV1.Get("/subcontractors/:id/jobs", h.SubcontractorJobs)

	apiV1.Post("/jobs/:jobId/decision", h.SubmitDecision)

	apiV1.Get("/properties/:propertyId/phase-counts", h.GetPhaseCounts)

	config.Log.Infof("Starting scheduler API on port %s...", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
