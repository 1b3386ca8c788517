package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/audit"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/face"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/repository"
	"github.com/saturnino-fabrica-de-software/vision-service/internal/service"
)

const defaultBodyLimit = 15 * 1024 * 1024

type Dependencies struct {
	Capabilities *face.Capabilities
	// DB is optional; without it the session reference store is disabled
	DB *pgxpool.Pool

	Threshold    float64
	RequireFace  bool
	MaxBodyBytes int
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	bodyLimit := defaultBodyLimit
	if deps != nil && deps.MaxBodyBytes > 0 {
		bodyLimit = deps.MaxBodyBytes
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Vision Service",
		BodyLimit:    bodyLimit,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var (
		capabilities handler.CapabilityReporter
		pinger       handler.Pinger
	)
	if r.deps != nil && r.deps.Capabilities != nil {
		capabilities = r.deps.Capabilities
	}
	if r.deps != nil && r.deps.DB != nil {
		pinger = r.deps.DB
	}

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(capabilities, pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Face routes need the models
	if capabilities == nil {
		return
	}

	faceHandler := handler.NewFaceHandler(r.newFaceService(), r.logger)

	faceGroup := r.app.Group("/face")
	faceGroup.Post("/reference", faceHandler.CreateReference)
	faceGroup.Post("/reference/save", faceHandler.SaveReference)
	faceGroup.Get("/reference/:session_id", faceHandler.GetReference)
	faceGroup.Delete("/reference/:session_id", faceHandler.DeleteReference)
	faceGroup.Post("/verify", faceHandler.Verify)
}

func (r *Router) newFaceService() *service.FaceService {
	caps := r.deps.Capabilities

	pipeline := service.NewEmbeddingPipeline(caps.Model, caps.Detector, r.logger)
	liveness := service.NewLivenessEstimator(caps.Detector, r.logger)

	var refRepo service.ReferenceRepositoryInterface
	if r.deps.DB != nil {
		refRepo = repository.NewReferenceRepository(r.deps.DB)
	}

	svc := service.NewFaceService(pipeline, liveness, refRepo, r.logger).
		WithRequireFace(r.deps.RequireFace).
		WithAuditor(audit.NewSlogLogger(r.logger))
	if r.deps.Threshold > 0 {
		svc.WithThreshold(r.deps.Threshold)
	}

	return svc
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
