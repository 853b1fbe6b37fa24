package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/api/handlers"
	"github.com/crosspost-labs/crosspost/internal/api/middleware"
	"github.com/crosspost-labs/crosspost/internal/repository"
	"github.com/crosspost-labs/crosspost/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	states := service.NewStateStore(rdb)
	r2Service := service.NewR2Service(*cfg)
	userService := service.NewUserService(profileRepo)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo, states)
	facebookService := service.NewFacebookService(*cfg, socialAccountRepo)
	instagramService := service.NewInstagramService(*cfg, socialAccountRepo)
	linkedinService := service.NewLinkedinService(*cfg, socialAccountRepo, states)
	postService := service.NewPostService(postRepo, facebookService, instagramService, linkedinService, r2Service)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	platform := handlers.NewPlatformHandler(platformService, facebookService, instagramService, linkedinService, *cfg)
	auth := app.Group("/auth")
	auth.Use(authMiddleware.AuthMiddleware())
	auth.Get("/:platform", platform.AddSocialAccount)
	auth.Get("/:platform/callback", platform.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Post("/users/init", user.InitProfile)
	api.Get("/user/info", user.GetUserInfo)

	post := handlers.NewPostHandler(postService)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	// social accounts api routes
	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
