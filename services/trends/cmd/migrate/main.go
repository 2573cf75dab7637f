// Command migrate applies the ClickHouse schema and optionally seeds the
// job_postings table from dataset files.
//
// Usage:
//
//	migrate [-seed data_cleaned.json] [-seed more.csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Falling-dow/Jobs-NYC-Postings/common/database"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/database/schema"
	"github.com/Falling-dow/Jobs-NYC-Postings/common/database/schema/migrations"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/config"
	"github.com/Falling-dow/Jobs-NYC-Postings/services/trends/internal/dataset"

	"go.uber.org/zap"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var seeds pathList
	flag.Var(&seeds, "seed", "insert the postings in `file` (JSON or CSV) after migrating; may be repeated")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.New(ctx, database.Options{
		DSN:             cfg.ClickHouseDSN,
		MaxOpenConns:    cfg.ClickHouseMaxOpenConns,
		MaxIdleConns:    cfg.ClickHouseMaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouseConnMaxLife,
		Username:        cfg.ClickHouseUsername,
		Password:        cfg.ClickHousePassword,
		Database:        cfg.ClickHouseDatabase,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ClickHouse", zap.Error(err))
	}
	defer db.Close()

	migrator := schema.NewMigrator(db.Conn(), logger)
	if _, err := migrator.Migrate(ctx, migrations.All); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	if len(seeds) == 0 {
		return
	}

	store := dataset.NewClickHouseSource(db.Conn(), logger)
	for _, path := range seeds {
		records, err := dataset.FileSource{Path: path}.Load(ctx)
		if err != nil {
			logger.Fatal("Failed to read seed file", zap.String("path", path), zap.Error(err))
		}
		if err := store.Insert(ctx, records); err != nil {
			logger.Fatal("Failed to seed job postings", zap.String("path", path), zap.Error(err))
		}
		logger.Info("Seeded job postings", zap.String("path", path), zap.Int("rows", len(records)))
	}
}
