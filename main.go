package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	api "github.com/rpupo63/personal-blog-backend/api"
	"github.com/rpupo63/personal-blog-backend/cache"
	"github.com/rpupo63/personal-blog-backend/config"
	"github.com/rpupo63/personal-blog-backend/content"
	"github.com/rpupo63/personal-blog-backend/database"
	"github.com/rpupo63/personal-blog-backend/metrics"
	"github.com/rpupo63/personal-blog-backend/models"
	"github.com/rpupo63/personal-blog-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	settings := config.Load(config.New())

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if level, err := zerolog.ParseLevel(settings.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Str("dbType", settings.DBType).Msg("Connecting to database")
	db, err := database.Open(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if settings.GenerateModels {
		log.Info().Msg("Generating query helpers...")
		if err := database.GenerateQueries(db, "./generated"); err != nil {
			log.Fatal().Err(err).Msg("Error generating query helpers")
		}
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	// If generating column mismatch report, run report and exit
	if settings.GenerateColumnReport {
		reports, err := database.ColumnReport(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		database.WriteColumnReport(os.Stdout, reports)
		return
	}

	currentDB := database.New(db)
	images := services.NewImageEncoder(settings.MaxImageBytes)

	if settings.SeedUsers {
		if err := seedUsers(context.Background(), currentDB, images, settings.DefaultUserImage); err != nil {
			log.Fatal().Err(err).Msg("Error seeding users")
		}
	}

	m, metricsHandler, err := metrics.Setup("personal-blog")
	if err != nil {
		log.Fatal().Err(err).Msg("Error setting up metrics")
	}

	navCache := cache.New(settings.RedisAddr, settings.NavCacheTTL, m)
	defer navCache.Close()

	deps := api.Deps{
		Store:          content.NewStore(currentDB, content.Config{Images: images, Cache: navCache}),
		Moderation:     content.NewModeration(currentDB, settings.CommentEditPolicy, nil),
		Searcher:       content.NewSearcher(currentDB),
		Mailer:         newMailer(settings),
		Metrics:        m,
		MetricsHandler: metricsHandler,
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(deps, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	closeDB(db)
}

func newMailer(settings config.Settings) services.MailSender {
	mailer, err := services.NewResendMailer(settings.ResendAPIKey, settings.ResendFromEmail, settings.ContactEmail)
	if err != nil {
		log.Warn().Err(err).Msg("Contact mail disabled")
		return services.LogMailer{}
	}
	return mailer
}

// seedUsers creates the admin and moderator profiles on an empty users table.
func seedUsers(ctx context.Context, db database.Database, images *services.ImageEncoder, imagePath string) error {
	count, err := db.UserRepo().Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var image []byte
	var contentType string
	if imagePath != "" {
		image, err = images.EncodePath(imagePath)
		if err != nil {
			return fmt.Errorf("default user image: %w", err)
		}
		contentType = images.ContentType(image)
	}

	users := []models.User{
		{FirstName: "Site", LastName: "Admin", Email: "admin@localhost", ImageData: image, ImageContentType: contentType},
		{FirstName: "Site", LastName: "Moderator", Email: "moderator@localhost", ImageData: image, ImageContentType: contentType},
	}
	return db.Transaction(ctx, func(tx database.Database) error {
		for i := range users {
			if err := tx.UserRepo().Add(ctx, &users[i]); err != nil {
				return err
			}
			log.Info().Str("userId", users[i].ID.String()).Str("email", users[i].Email).Msg("Seeded user")
		}
		return nil
	})
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
