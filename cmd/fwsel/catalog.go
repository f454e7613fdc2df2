package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/fwselect/firewall-selector/export"
	"github.com/fwselect/firewall-selector/filter"
	"github.com/fwselect/firewall-selector/models"
	"github.com/fwselect/firewall-selector/pricing"
)

var filterFlags = []cli.Flag{
	&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "Substring of model or family"},
	&cli.StringFlag{Name: "family", Usage: "Exact family"},
	&cli.StringFlag{Name: "form-factor", Usage: "Form factor substring"},
	&cli.StringFlag{Name: "fw-min", Usage: "Minimum firewall throughput (Gbps)"},
	&cli.StringFlag{Name: "threat-min", Usage: "Minimum threat throughput (Gbps)"},
	&cli.StringFlag{Name: "ips-min", Usage: "Minimum IPS throughput (Gbps)"},
}

func filterSpec(c *cli.Context) filter.Spec {
	return filter.Spec{
		Query:      c.String("search"),
		Family:     c.String("family"),
		FormFactor: c.String("form-factor"),
		FwMin:      filter.ParseMinimum(c.String("fw-min")),
		ThreatMin:  filter.ParseMinimum(c.String("threat-min")),
		IPSMin:     filter.ParseMinimum(c.String("ips-min")),
	}
}

// =============================================================================
// FAMILIES COMMAND
// =============================================================================

func familiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "families",
		Usage: "List product families",
		Action: withEnv(func(c *cli.Context, e *env) error {
			var families []string
			if e.fromDatabase(c) {
				err := e.withRepository(c.Context, func(repo *models.ProductsRepository) error {
					var err error
					families, err = repo.GetFamilies(c.Context)
					return err
				})
				if err != nil {
					return err
				}
			} else {
				cat, err := e.loadCatalog(c)
				if err != nil {
					return err
				}
				families = cat.Families()
			}
			for _, f := range families {
				fmt.Println(f)
			}
			return nil
		}),
	}
}

// =============================================================================
// FILTER COMMAND
// =============================================================================

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "List products matching the filters",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		}, filterFlags...),
		Action: withEnv(func(c *cli.Context, e *env) error {
			cat, err := e.loadCatalog(c)
			if err != nil {
				return err
			}
			rows := export.Rows(filter.Apply(cat, filterSpec(c)))

			if c.String("format") == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			return printRows(os.Stdout, rows)
		}),
	}
}

func printRows(w io.Writer, rows []export.Row) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(export.Header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r.Values(), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d product(s)\n", len(rows))
	return nil
}

// =============================================================================
// QUOTE COMMAND
// =============================================================================

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a product with its licences and support",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Usage: "Product model", Required: true},
			&cli.IntFlag{Name: "term", Aliases: []string{"t"}, Usage: "Licence term in years (0 for none)"},
			&cli.BoolFlag{Name: "amp", Usage: "Add AMP (malware protection)"},
			&cli.BoolFlag{Name: "url", Usage: "Add URL filtering"},
			&cli.BoolFlag{Name: "support", Usage: "Add 12 months SSSNT support"},
			&cli.StringFlag{Name: "hw", Usage: "Hardware list-price multiplier"},
			&cli.StringFlag{Name: "sw", Usage: "Software list-price multiplier"},
			&cli.StringFlag{Name: "sssnt", Usage: "Support list-price multiplier"},
		},
		Action: withEnv(func(c *cli.Context, e *env) error {
			sel := pricing.Selection{
				Model: c.String("model"),
				Options: pricing.Options{
					Term:    c.Int("term"),
					AMP:     c.Bool("amp"),
					URL:     c.Bool("url"),
					Support: c.Bool("support"),
				},
			}

			var q pricing.Quote
			if e.fromDatabase(c) {
				err := e.withRepository(c.Context, func(repo *models.ProductsRepository) error {
					var err error
					q, err = quoteFromStore(c.Context, repo, e.terms(), e.discounts(c), sel)
					return err
				})
				if err != nil {
					return err
				}
			} else {
				cat, err := e.loadCatalog(c)
				if err != nil {
					return err
				}
				q = pricing.QuoteFor(cat, e.discounts(c), sel)
			}
			if q.Empty() {
				return fmt.Errorf("unknown model %q", c.String("model"))
			}
			return printQuote(os.Stdout, q)
		}),
	}
}

type productLookup interface {
	GetByModel(ctx context.Context, model string) (*models.Product, error)
}

// quoteFromStore quotes a single product fetched by model, without loading
// the whole catalog. An unknown model gives the empty quote.
func quoteFromStore(ctx context.Context, store productLookup, terms []int, d pricing.Discounts, sel pricing.Selection) (pricing.Quote, error) {
	p, err := store.GetByModel(ctx, sel.Model)
	if errors.Is(err, models.ErrProductNotFound) {
		return pricing.Build(nil, d, sel.Options), nil
	}
	if err != nil {
		return pricing.Quote{}, err
	}
	supported := func(term int) bool { return slices.Contains(terms, term) }
	return pricing.BuildSupported(p, supported, d, sel.Options), nil
}

func printQuote(w io.Writer, q pricing.Quote) error {
	fmt.Fprintf(w, "%s (licensing: %s)\n\n", q.Model, q.Licensing)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Label\tSKU\tCat\tGPL\tNet")
	for _, l := range q.Lines {
		label := l.Label
		if l.Breakdown {
			label = "  " + label
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			label, orDash(l.SKU), l.Category, money(l.ListPrice), money(l.NetPrice))
	}
	fmt.Fprintf(tw, "Total\t\t\t%s\t%s\n", money(q.TotalList), money(q.TotalNet))
	return tw.Flush()
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return export.Placeholder
	}
	return d.Decimal.StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return export.Placeholder
	}
	return s
}

// =============================================================================
// EXPORT COMMAND
// =============================================================================

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the filtered catalog to CSV or XLSX",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "csv",
				Usage:   "Output format (csv, xlsx)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (defaults to firewalls_filtered.<format>)",
			},
		}, filterFlags...),
		Action: withEnv(func(c *cli.Context, e *env) error {
			write, name := export.WriteCSV, export.CSVFileName
			switch strings.ToLower(c.String("format")) {
			case "csv":
			case "xlsx":
				write, name = export.WriteXLSX, export.XLSXFileName
			default:
				return fmt.Errorf("unsupported format %q", c.String("format"))
			}
			if out := c.String("output"); out != "" {
				name = out
			}

			cat, err := e.loadCatalog(c)
			if err != nil {
				return err
			}
			rows := export.Rows(filter.Apply(cat, filterSpec(c)))

			f, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", name, err)
			}
			if err := write(f, rows); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Exported %d product(s) to %s\n", len(rows), name)
			return nil
		}),
	}
}
