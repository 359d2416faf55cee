// Command migrate applies or rolls back the events database schema.
//
// Usage:
//
//	migrate [-steps N] up|down|steps|version
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/prohmpiriya/explore-events/internal/migrations"
	"github.com/prohmpiriya/explore-events/pkg/config"
	"github.com/prohmpiriya/explore-events/pkg/database"
	"github.com/prohmpiriya/explore-events/pkg/logger"
)

func main() {
	steps := flag.Int("steps", 1, "number of migrations to apply with the steps command (negative rolls back)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-steps N] up|down|steps|version\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: cfg.App.Name + "-migrate",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	dbCfg := &database.PostgresConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}

	m, err := database.NewMigrator(migrations.FS, migrations.Dir, dbCfg.URL())
	if err != nil {
		appLog.Fatal("Failed to open migrator", zap.Error(err))
	}
	defer m.Close()

	command := flag.Arg(0)
	switch command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(*steps)
	case "version":
	default:
		appLog.Error("Unknown command", zap.String("command", command))
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		appLog.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}

	version, dirty, err := m.Version()
	if err != nil {
		appLog.Fatal("Failed to read schema version", zap.Error(err))
	}
	appLog.Info("Schema version",
		zap.String("command", command),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
}
