package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-memo/internal/cache"
	common_api "go-memo/internal/common/api"
	"go-memo/internal/config"
	"go-memo/internal/database"
	"go-memo/internal/features/auth"
	"go-memo/internal/features/mailqueue"
	"go-memo/internal/features/memo"
	"go-memo/internal/features/template"
	"go-memo/internal/features/upload"
	"go-memo/internal/features/user"
	"go-memo/internal/logger"
	"go-memo/internal/middleware"
	"go-memo/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a constructor so Fx adds its result to the "routes" group
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" and calls Setup() on each one
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, assetRepo upload.AssetRepository, userRepo user.UserRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := assetRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure file asset indexes: %v", err)
				}
				if err := userRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure user indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,
			cache.NewRedisClient,

			// Storage collaborators
			upload.NewLocalBlobStore,
			upload.NewImageGenerator,
			mailqueue.NewRedisListStore,
			mailqueue.NewSMTPNotifier,

			// Repositories
			upload.NewAssetRepository,
			user.NewUserRepository,
			memo.NewMemoRepository,
			template.NewTemplateRepository,

			// Services
			upload.NewUploadService,
			user.NewUserService,
			auth.NewAuthService,
			memo.NewMemoService,
			template.NewTemplateService,
			mailqueue.NewQueue,
			mailqueue.NewConsumer,

			// Interface adapters to satisfy Fx
			func(s *upload.LocalBlobStore) upload.BlobStore { return s },
			func(g *upload.ImageGenerator) upload.VariantGenerator { return g },
			func(s user.UserService) mailqueue.RecipientSource { return s },
			func(q *mailqueue.Queue) auth.MailEnqueuer { return q },

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			memo.NewMemoController,
			template.NewTemplateController,
			upload.NewUploadController,
			mailqueue.NewQueueController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(memo.NewMemoApi),
			AsRoute(template.NewTemplateApi),
			AsRoute(upload.NewUploadApi),
			AsRoute(mailqueue.NewQueueApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, consumer *mailqueue.Consumer) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return consumer.Start()
					},
					OnStop: func(ctx context.Context) error {
						consumer.Stop()
						return nil
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
