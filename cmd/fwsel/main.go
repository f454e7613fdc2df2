// fwsel queries the firewall catalog and manages its database.
//
// Usage:
//
//	fwsel filter --search 1100 --fw-min 2
//	fwsel quote --model FPR-1120 --term 3 --amp --support
//	fwsel export --format xlsx --output firewalls.xlsx
//	fwsel seed --file data/firewalls.json
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/fwselect/firewall-selector/config"
	"github.com/fwselect/firewall-selector/db"
	"github.com/fwselect/firewall-selector/loader"
	"github.com/fwselect/firewall-selector/logger"
	"github.com/fwselect/firewall-selector/models"
	"github.com/fwselect/firewall-selector/pricing"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "fwsel",
		Usage:   "Firewall catalog selection and quoting",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "Catalog JSON file (overrides catalog.source)",
				EnvVars: []string{"FWSEL_CLI_CATALOG"},
			},
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Catalog source (file, database); defaults to catalog.source",
				EnvVars: []string{"FWSEL_CLI_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"FWSEL_CLI_LOG_LEVEL"},
			},
		},

		Commands: []*cli.Command{
			familiesCommand(),
			filterCommand(),
			quoteCommand(),
			exportCommand(),
			migrateCommand(),
			seedCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	log *zap.Logger
}

func setup(c *cli.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:  c.String("log-level"),
		Format: "console",
		Output: "stderr",
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log}, nil
}

// fromDatabase reports whether catalog reads go to the products table:
// --catalog forces a file, --source overrides catalog.source.
func (e *env) fromDatabase(c *cli.Context) bool {
	if c.String("catalog") != "" {
		return false
	}
	if c.IsSet("source") {
		return strings.EqualFold(c.String("source"), config.SourceDatabase)
	}
	return e.cfg.Catalog.Source == config.SourceDatabase
}

func (e *env) terms() []int {
	if len(e.cfg.Catalog.Terms) == 0 {
		return models.DefaultTerms
	}
	return e.cfg.Catalog.Terms
}

// withRepository opens the database for the duration of fn.
func (e *env) withRepository(ctx context.Context, fn func(*models.ProductsRepository) error) error {
	gdb, err := db.Open(ctx, e.cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()
	return fn(models.NewProductsRepository(gdb))
}

// loadCatalog reads the whole catalog from --catalog, or from the selected source.
func (e *env) loadCatalog(c *cli.Context) (*models.Catalog, error) {
	ctx := c.Context
	policy := loader.RetryPolicy{
		Attempts: e.cfg.Catalog.LoadAttempts,
		Timeout:  e.cfg.Catalog.LoadTimeout,
		Delay:    e.cfg.Catalog.RetryDelay,
	}

	if !e.fromDatabase(c) {
		path := c.String("catalog")
		if path == "" {
			path = e.cfg.Catalog.Path
		}
		return loader.LoadWithRetry(ctx, loader.FileLoader{Path: path}, policy, e.log)
	}

	var cat *models.Catalog
	err := e.withRepository(ctx, func(repo *models.ProductsRepository) error {
		var err error
		cat, err = loader.LoadWithRetry(ctx, loader.DBLoader{Repo: repo, Terms: e.cfg.Catalog.Terms}, policy, e.log)
		return err
	})
	return cat, err
}

func (e *env) discounts(c *cli.Context) pricing.Discounts {
	rate := func(flag string, def float64) decimal.Decimal {
		if !c.IsSet(flag) {
			return decimal.NewFromFloat(def)
		}
		return pricing.ParseRate(c.String(flag))
	}
	return pricing.NewDiscounts(
		rate("hw", e.cfg.Discounts.Hardware),
		rate("sw", e.cfg.Discounts.Software),
		rate("sssnt", e.cfg.Discounts.Support),
	)
}

func withEnv(action func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Context == nil {
			c.Context = context.Background()
		}
		e, err := setup(c)
		if err != nil {
			return err
		}
		defer func() { _ = e.log.Sync() }()
		return action(c, e)
	}
}
