package database

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/personal-blog-backend/config"
)

type Database struct {
	db          *gorm.DB
	blogRepo    *BlogRepo
	postRepo    *PostRepo
	tagRepo     *TagRepo
	commentRepo *CommentRepo
	userRepo    *UserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		blogRepo:    NewBlogRepo(db),
		postRepo:    NewPostRepo(db),
		tagRepo:     NewTagRepo(db),
		commentRepo: NewCommentRepo(db),
		userRepo:    NewUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) BlogRepo() *BlogRepo {
	return d.blogRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// DB returns the underlying connection for diagnostics and tests.
func (d Database) DB() *gorm.DB {
	return d.db
}

// SlugResolver checks slug uniqueness against this handle. Inside a transaction it sees the
// transaction's own writes.
func (d Database) SlugResolver() SlugResolver {
	return SlugResolver{db: d.db}
}

// Transaction runs fn with repositories bound to one transaction. Returning an error rolls back
// everything fn wrote.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Open connects to the database selected by DB_TYPE.
func Open(s config.Settings) (*gorm.DB, error) {
	gormLogger := logger.New(
		stdlog.New(log.With().Str("component", "gorm").Logger(), "", 0),
		logger.Config{
			SlowThreshold:             s.SlowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch s.DBType {
	case "postgres", "supa":
		if s.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for DB_TYPE %q", s.DBType)
		}
		dialector = postgres.New(postgres.Config{
			DSN:                  s.DatabaseURL,
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(s.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
		dialector = sqlite.Open(SQLiteDSN(s.SQLitePath))
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", s.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:    false,
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if s.DBType == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one connection, so sqlite transactions run one at a time
		sqlDB.SetMaxOpenConns(1)
	} else if s.ReplicaDSN != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(s.ReplicaDSN)},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		log.Info().Msg("Read replica registered for search and listings")
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
