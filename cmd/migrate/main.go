// Command migrate manages the notification schema outside of server startup.
//
//	migrate up | down | version | force <version>
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/config"
	"github.com/saransh1220/panchakarma/internal/shared/infrastructure/logger"
	"github.com/saransh1220/panchakarma/pkg/migration"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: migrate [-path dir] [-database url] up|down|version|force <version>")

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg := config.Load()
	path := flag.String("path", cfg.Storage.MigrationsPath, "directory holding the migration files")
	dbURL := flag.String("database", cfg.Database.URL(), "postgres connection URL")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	runner := migration.NewRunner(&migration.Config{
		MigrationsPath: *path,
		DatabaseURL:    *dbURL,
		Logger:         log,
	})
	if err := run(runner, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		log.Fatal("migrate failed", zap.Error(err))
	}
}

type migrator interface {
	Up() error
	Down() error
	Force(version int) error
	Version() (uint, bool, error)
}

func run(m migrator, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "force":
		if len(args) != 2 {
			return errUsage
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: bad version %q", errUsage, args[1])
		}
		return m.Force(version)
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version %d dirty=%t\n", version, dirty)
		return nil
	default:
		return errUsage
	}
}
