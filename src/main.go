package main

import (
	_ "Backend-Feedback/docs"
	"Backend-Feedback/src/blobstore"
	"Backend-Feedback/src/config"
	"Backend-Feedback/src/controllers"
	"Backend-Feedback/src/database"
	"Backend-Feedback/src/jobs"
	"Backend-Feedback/src/repository"
	"Backend-Feedback/src/routes"
	"Backend-Feedback/src/seeder"
	"Backend-Feedback/src/services/academicyears"
	"Backend-Feedback/src/services/feedbacks"
	"Backend-Feedback/src/services/forms"
	"Backend-Feedback/src/services/imagefeedbacks"
	"Backend-Feedback/src/services/questions"
	"Backend-Feedback/src/services/users"
	"Backend-Feedback/src/utils"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func()) {
	if cfg.UseMemoryStore() {
		log.Println("⚠️ STORAGE=memory. Data is lost on restart.")
		return repository.NewMemoryStore(), func() {}
	}

	// เชื่อมต่อกับ MongoDB
	client, err := database.ConnectMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Error connecting to the database: %v", err)
	}
	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Error creating indexes: %v", err)
	}
	supportsTx := database.SupportsTransactions(ctx, client)
	if !supportsTx {
		log.Println("⚠️ MongoDB is standalone. Multi-document writes run without transactions.")
	}

	return repository.NewMongoStore(db, supportsTx), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}

// openBlobStore returns the store and, for the local driver, the directory to
// serve at /uploads.
func openBlobStore(cfg *config.Config) (blobstore.Store, string) {
	switch cfg.BlobDriver {
	case "supabase":
		store, err := blobstore.NewSupabaseStore(cfg.SupabaseProjectURL, cfg.SupabaseServiceRole, cfg.SupabaseBucket)
		if err != nil {
			log.Fatalf("Error configuring Supabase storage: %v", err)
		}
		return store, ""
	default:
		store, err := blobstore.NewLocalStore(cfg.BlobLocalDir, cfg.BlobPublicBaseURL)
		if err != nil {
			log.Fatalf("Error preparing upload directory: %v", err)
		}
		return store, cfg.BlobLocalDir
	}
}

func main() {
	cfg := config.Load()
	controllers.DefaultRequestTimeout = cfg.RequestTimeout

	ctx := context.Background()
	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	redisClient := database.InitRedis(cfg.RedisURI)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	sessions := utils.NewSessionStore(redisClient, cfg.LoginMaxAttempts, cfg.LoginCooldown)

	blobs, uploadsDir := openBlobStore(cfg)
	purger := forms.NewPurger(store)
	handlers := jobs.NewHandlers(purger, blobs)

	var enqueuer jobs.Enqueuer
	if asynqClient := database.InitAsynq(cfg.RedisURI, redisClient != nil); asynqClient != nil {
		defer asynqClient.Close()
		enqueuer = jobs.NewAsynqEnqueuer(asynqClient)

		worker, err := jobs.StartWorker(cfg.RedisURI, handlers)
		if err != nil {
			log.Fatalf("Error starting worker: %v", err)
		}
		defer worker.Shutdown()
	} else {
		enqueuer = jobs.NewInlineEnqueuer(handlers.Mux())
	}

	userService := users.NewService(store, tokens, sessions)
	yearService := academicyears.NewService(store)
	formService := forms.NewService(store, purger, enqueuer)

	if cfg.SeedDemo {
		if _, err := seeder.SeedDemo(ctx, seeder.Services{Users: userService, AcademicYears: yearService, Forms: formService}); err != nil {
			log.Printf("❌ [seeder] %v", err)
		}
	}

	// สร้าง app instance
	app := routes.NewApp(routes.Dependencies{
		Tokens:         tokens,
		Sessions:       sessions,
		Users:          userService,
		AcademicYears:  yearService,
		Forms:          formService,
		Questions:      questions.NewService(store),
		Feedbacks:      feedbacks.NewService(store),
		ImageFeedbacks: imagefeedbacks.NewService(store, blobs, enqueuer, cfg.ImageMaxDimension),
		AllowedOrigins: cfg.AllowedOrigins,
		FrontendURL:    cfg.FrontendURL,
		UploadsDir:     uploadsDir,
		AccessLog:      true,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ shutdown: %v", err)
		}
	}()

	// เริ่มเซิร์ฟเวอร์
	log.Println("Server is running on port " + cfg.AppURI)
	if err := app.Listen(fmt.Sprintf(":%s", cfg.AppURI)); err != nil {
		log.Fatal(err)
	}
}
