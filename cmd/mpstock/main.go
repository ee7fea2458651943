package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/andresuchdata/mpstock/internal/config"
	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/andresuchdata/mpstock/internal/export"
	"github.com/andresuchdata/mpstock/internal/monitoring"
	"github.com/andresuchdata/mpstock/internal/repository"
	"github.com/andresuchdata/mpstock/internal/repository/postgres"
	"github.com/andresuchdata/mpstock/internal/snapshot"
	"github.com/andresuchdata/mpstock/internal/storage"
	"github.com/andresuchdata/mpstock/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type contextKey string

const dbKey contextKey = "db"

func newDBURLFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: required,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newFileFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to the dashboard snapshot JSON",
		Required: required,
		EnvVars:  []string{"SNAPSHOT_PATH"},
	}
}

func newNameFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "name",
		Usage:   "Snapshot name in the database",
		Value:   "dashboard",
		EnvVars: []string{"SNAPSHOT_NAME"},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "marketplace", Aliases: []string{"m"}, Value: string(domain.MarketplaceWB), Usage: "wb or ozon"},
		&cli.StringFlag{Name: "period", Value: string(domain.WindowToday), Usage: "today, yesterday, days_3, days_7 or days_30"},
		&cli.StringFlag{Name: "status", Value: string(domain.StatusAll), Usage: "all, critical, warning or normal"},
		&cli.StringFlag{Name: "sort", Value: string(domain.SortDaysLeft), Usage: "sort column"},
		&cli.BoolFlag{Name: "desc", Usage: "sort descending"},
	}
}

func selectionFromFlags(c *cli.Context) domain.Selection {
	return domain.Selection{
		Marketplace: domain.Marketplace(c.String("marketplace")),
		Period:      domain.Window(c.String("period")),
		Status:      domain.StatusFilter(c.String("status")),
		Sort: domain.SortSpec{
			Column:    domain.SortColumn(c.String("sort")),
			Ascending: !c.Bool("desc"),
		},
	}.Normalize()
}

// initDB connects when --db-url is set and stores the pool on the context.
func initDB(c *cli.Context) error {
	url := c.String("db-url")
	if url == "" {
		return nil
	}

	db, err := postgres.Connect(c.Context, postgres.DriverPGX, url)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFromContext(c *cli.Context) *postgres.DB {
	db, _ := c.Context.Value(dbKey).(*postgres.DB)
	return db
}

// loadDocument reads the snapshot from --file, or from the database when
// only --db-url is given.
func loadDocument(c *cli.Context) (*snapshot.Document, error) {
	if path := c.String("file"); path != "" {
		return snapshot.NewFileLoader(path).Load(c.Context)
	}
	if db := dbFromContext(c); db != nil {
		repo := repository.NewSnapshotRepository(db)
		return repository.NewSnapshotLoader(repo, c.String("name")).Load(c.Context)
	}
	return nil, fmt.Errorf("either --file or --db-url is required")
}

func newEngine() (*monitoring.Engine, error) {
	cfg := config.Load()
	matcher, err := monitoring.NewMatcher(cfg.Monitor.Matcher)
	if err != nil {
		return nil, err
	}
	return monitoring.NewEngine(monitoring.Config{
		Matcher:    matcher,
		WatchList:  cfg.Monitor.WatchList,
		AlertLimit: cfg.Monitor.AlertLimit,
	}), nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}
	cfg := config.Load()
	logger.Configure("console", cfg.Log.Level)

	app := &cli.App{
		Name:  "mpstock",
		Usage: "Marketplace stock monitoring and forecasting",
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "Compute the monitoring view and print it as JSON",
				Flags: append([]cli.Flag{
					newFileFlag(false),
					newDBURLFlag(false),
					newNameFlag(),
				}, selectionFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					doc, err := loadDocument(c)
					if err != nil {
						return err
					}
					engine, err := newEngine()
					if err != nil {
						return err
					}
					view := engine.Compute(doc, selectionFromFlags(c))

					enc := json.NewEncoder(c.App.Writer)
					enc.SetIndent("", "  ")
					return enc.Encode(view)
				},
			},
			{
				Name:  "export",
				Usage: "Write the monitoring view to an XLSX workbook",
				Flags: append([]cli.Flag{
					newFileFlag(false),
					newDBURLFlag(false),
					newNameFlag(),
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output workbook path",
						Value:   "report.xlsx",
					},
				}, selectionFlags()...),
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					doc, err := loadDocument(c)
					if err != nil {
						return err
					}
					engine, err := newEngine()
					if err != nil {
						return err
					}
					view := engine.Compute(doc, selectionFromFlags(c))

					out, err := os.Create(c.String("out"))
					if err != nil {
						return fmt.Errorf("failed to create %s: %w", c.String("out"), err)
					}
					if err := export.WriteXLSX(out, &view); err != nil {
						out.Close()
						return err
					}
					if err := out.Close(); err != nil {
						return err
					}

					logger.Log.Info().
						Str("out", c.String("out")).
						Int("records", len(view.Records)).
						Int("alerts", len(view.Alerts)).
						Msg("Report exported")
					return nil
				},
			},
			{
				Name:      "resolve",
				Usage:     "Print the logistics cluster of each warehouse",
				ArgsUsage: "<warehouse>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "marketplace", Aliases: []string{"m"}, Value: string(domain.MarketplaceWB), Usage: "wb or ozon"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return fmt.Errorf("at least one warehouse name is required")
					}
					mp, ok := domain.ParseMarketplace(c.String("marketplace"))
					if !ok {
						return fmt.Errorf("unknown marketplace %q", c.String("marketplace"))
					}

					resolver := monitoring.DefaultClusterResolver()
					for _, warehouse := range c.Args().Slice() {
						fmt.Fprintf(c.App.Writer, "%s\t%s\n", warehouse, resolver.Resolve(warehouse, mp))
					}
					return nil
				},
			},
			{
				Name:  "publish",
				Usage: "Store a snapshot file in the database and optionally object storage",
				Flags: []cli.Flag{
					newFileFlag(true),
					newDBURLFlag(true),
					newNameFlag(),
					&cli.StringFlag{
						Name:  "s3-key",
						Usage: "Also upload the file to this object key using STORAGE_* settings",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					path := c.String("file")
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("failed to read %s: %w", path, err)
					}
					// decoded only for validation and logging; the bytes are stored as-is
					doc, err := snapshot.DecodeBytes(data)
					if err != nil {
						return err
					}

					repo := repository.NewSnapshotRepository(dbFromContext(c))
					if err := repo.EnsureSchema(c.Context); err != nil {
						return err
					}
					if err := repo.Save(c.Context, c.String("name"), data); err != nil {
						return err
					}

					if key := c.String("s3-key"); key != "" {
						client, err := storage.New(storage.Config{
							Endpoint:  cfg.Storage.Endpoint,
							AccessKey: cfg.Storage.AccessKey,
							SecretKey: cfg.Storage.SecretKey,
							Bucket:    cfg.Storage.Bucket,
							Region:    cfg.Storage.Region,
							UseSSL:    cfg.Storage.UseSSL,
							Client:    cfg.Storage.Client,
						})
						if err != nil {
							return err
						}
						if err := client.UploadObject(c.Context, key, data); err != nil {
							return err
						}
					}

					logger.Log.Info().
						Str("name", c.String("name")).
						Str("version", doc.Version()).
						Msg("Snapshot published")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("Command failed")
	}
}
