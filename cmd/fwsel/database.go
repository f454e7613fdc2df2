package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fwselect/firewall-selector/db"
	"github.com/fwselect/firewall-selector/models"
)

// =============================================================================
// MIGRATE COMMAND
// =============================================================================

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withEnv(func(c *cli.Context, e *env) error {
					return withMigrator(e, (*db.Migrator).Up)
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back all migrations",
				Action: withEnv(func(c *cli.Context, e *env) error {
					return withMigrator(e, (*db.Migrator).Down)
				}),
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: withEnv(func(c *cli.Context, e *env) error {
					return withMigrator(e, func(m *db.Migrator) error {
						version, dirty, err := m.Version()
						if err != nil {
							return err
						}
						fmt.Printf("version %d (dirty: %t)\n", version, dirty)
						return nil
					})
				}),
			},
		},
	}
}

func withMigrator(e *env, fn func(*db.Migrator) error) error {
	m, err := db.NewMigrator(e.cfg.Database.DSN(), e.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			e.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

// =============================================================================
// SEED COMMAND
// =============================================================================

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a JSON catalog into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   "data/firewalls.json",
				Usage:   "Catalog JSON file",
			},
			&cli.BoolFlag{
				Name:  "skip-migrate",
				Usage: "Do not apply migrations first",
			},
		},
		Action: withEnv(runSeed),
	}
}

func runSeed(c *cli.Context, e *env) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := models.ParseCatalog(data)
	if err != nil {
		return err
	}

	if !c.Bool("skip-migrate") {
		if err := withMigrator(e, (*db.Migrator).Up); err != nil {
			return err
		}
	}

	gdb, err := db.Open(c.Context, e.cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()

	repo := models.NewProductsRepository(gdb)
	n, err := repo.SaveProducts(c.Context, cat.Products())
	if err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	fmt.Printf("Upserted %d product(s) from %s\n\n", n, c.String("file"))

	s, err := repo.Summary(c.Context)
	if err != nil {
		return fmt.Errorf("failed to summarize catalog: %w", err)
	}
	fmt.Println("Catalog summary")
	fmt.Printf("  Products:        %d\n", s.TotalProducts)
	fmt.Printf("  Families:        %d\n", s.TotalFamilies)
	fmt.Printf("  Form factors:    %d\n", s.TotalFormFactors)
	fmt.Printf("  Avg FW Gbps:     %.2f\n", s.AvgFwGbps)
	fmt.Printf("  Avg Threat Gbps: %.2f\n", s.AvgThreatGbps)
	fmt.Printf("  Avg IPS Gbps:    %.2f\n", s.AvgIPSGbps)
	return nil
}
