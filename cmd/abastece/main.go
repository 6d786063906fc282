package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/esc4n0rx/abastececd/internal/cache"
	"github.com/esc4n0rx/abastececd/internal/calc"
	"github.com/esc4n0rx/abastececd/internal/config"
	"github.com/esc4n0rx/abastececd/internal/domain"
	"github.com/esc4n0rx/abastececd/internal/ingest"
	"github.com/esc4n0rx/abastececd/internal/repository"
	"github.com/esc4n0rx/abastececd/internal/repository/postgres"
	"github.com/esc4n0rx/abastececd/internal/service"
	"github.com/esc4n0rx/abastececd/internal/storage"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func openDB(c *cli.Context) (*postgres.DB, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewWithDB(db), nil
}

func buildService(db *postgres.DB) *service.ReplenishmentService {
	cfg := config.Load()

	stockRepo := repository.NewStockRepository(db)
	demandRepo := repository.NewDemandRepository(db)
	positionRepo := repository.NewPositionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	uploadRepo := repository.NewUploadHistoryRepository(db)

	ingestService := ingest.NewService(stockRepo, demandRepo, uploadRepo, cfg.App.BatchSize)
	calcService := calc.NewService(settingsRepo, stockRepo, demandRepo, positionRepo, cfg.App.BatchSize)

	return service.NewReplenishmentService(
		ingestService, calcService,
		stockRepo, demandRepo, positionRepo, settingsRepo, uploadRepo,
		cache.NewNoopPositionCache(), storage.NoopStorage{},
	)
}

func runIngest(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	filePath := c.String("file")
	kind := domain.DatasetKind(c.String("type"))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	svc := buildService(db)
	result, err := svc.UploadDataset(c.Context, filepath.Base(filePath), int64(len(data)), data, kind)
	if err != nil {
		return err
	}

	fmt.Printf("status: %s, records processed: %d\n", result.Status, result.RecordsProcessed)
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	return nil
}

func runRecalculate(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := buildService(db).RecalculatePositions(c.Context)
	if err != nil {
		return err
	}

	fmt.Printf("positions calculated: %d\n", count)
	return nil
}

func runArchive(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Archive.Enabled {
		return fmt.Errorf("upload archive is not enabled (set ARCHIVE_ENABLED=true)")
	}

	client, err := storage.NewMinioClient(cfg.Archive)
	if err != nil {
		return fmt.Errorf("failed to connect to archive: %w", err)
	}

	objects, err := client.ListObjects(c.Context, service.ArchivePrefix)
	if err != nil {
		return err
	}

	if len(objects) == 0 {
		fmt.Println("archive is empty")
		return nil
	}
	for _, obj := range objects {
		fmt.Printf("%s\t%d bytes\t%s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runReset(c *cli.Context) error {
	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := buildService(db).ResetAll(c.Context); err != nil {
		return err
	}

	fmt.Println("all data reset")
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "abastece",
		Usage: "Operate the replenishment engine from the command line",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "Ingest a stock or demand spreadsheet and recalculate positions",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the csv or xlsx file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Dataset to replace (stock or demand)",
						Required: true,
					},
				},
				Action: runIngest,
			},
			{
				Name:   "recalculate",
				Usage:  "Rebuild the replenishment position set",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runRecalculate,
			},
			{
				Name:   "reset",
				Usage:  "Wipe stock, demand and positions, keeping settings",
				Flags:  []cli.Flag{newDBURLFlag()},
				Action: runReset,
			},
			{
				Name:   "archive",
				Usage:  "List the raw spreadsheets stored in the upload archive",
				Action: runArchive,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
