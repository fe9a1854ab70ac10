// tfcost - Terraform plan cost analysis
//
// Usage:
//   tfcost analyze --plan plan.json [options]
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"terraform-cost-analyzer/cost"
	"terraform-cost-analyzer/db/clickhouse"
	"terraform-cost-analyzer/pkg/errors"
	"terraform-cost-analyzer/pricing"
	"terraform-cost-analyzer/pricing/awsapi"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitParseError    = 10
	exitEstimateError = 11
)

func main() {
	app := &cli.App{
		Name:    "tfcost",
		Usage:   "Cost analysis for Terraform plans",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"TFCOST_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "tfcost",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			analyzeCommand(),
			pricingCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var exitErr cli.ExitCoder
		if stderrors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

// =============================================================================
// ANALYZE COMMAND
// =============================================================================

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze the cost impact of a Terraform plan",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "plan",
				Aliases:  []string{"p"},
				Usage:    "Path to terraform plan JSON (from terraform show -json)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Value:   "dev",
				Usage:   "Environment (dev, staging, prod)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
			&cli.StringFlag{
				Name:  "currency",
				Value: "USD",
				Usage: "Currency label for reported costs",
			},
			&cli.StringFlag{
				Name:  "project",
				Value: "terraform",
				Usage: "Project name recorded in the analysis",
			},
			&cli.StringFlag{
				Name:  "previous",
				Usage: "Path to a previous analysis JSON for cost deltas",
			},
			&cli.StringFlag{
				Name:  "pricing",
				Value: "static",
				Usage: "Pricing source (static, clickhouse, aws)",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: 0,
				Usage: "Estimation workers (0 uses one per CPU)",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	ctx := context.Background()
	logger := newLogger(c.String("log-level"))

	source, cleanup, err := buildSource(ctx, c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitEstimateError)
	}
	if cleanup != nil {
		defer cleanup()
	}

	analyzer, err := cost.NewAnalyzer(cost.Config{
		Source:      pricing.NewCache(source),
		ProjectName: c.String("project"),
		Environment: c.String("env"),
		Currency:    c.String("currency"),
		Concurrency: c.Int("concurrency"),
		Logger:      logger,
	})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitEstimateError)
	}

	var previous *cost.CostAnalysis
	if path := c.String("previous"); path != "" {
		previous, err = loadPreviousAnalysis(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Error: %v", err), exitParseError)
		}
	}

	analysis, err := analyzer.AnalyzeFile(ctx, c.String("plan"), previous)
	if err != nil {
		var parseErr *errors.PlanParsingError
		if stderrors.As(err, &parseErr) {
			return cli.Exit(fmt.Sprintf("Error: %v", err), exitParseError)
		}
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitEstimateError)
	}

	logger.Info().
		Int("resources", analysis.Summary.TotalResources).
		Int("adds", analysis.Summary.ResourcesToAdd).
		Int("updates", analysis.Summary.ResourcesToUpdate).
		Int("deletes", analysis.Summary.ResourcesToDelete).
		Msg("analysis complete")

	switch c.String("format") {
	case "json":
		return outputJSON(analysis)
	default:
		return outputTable(analysis)
	}
}

// buildSource wires the pricing backend picked on the command line.
// The returned cleanup closes any connection the source holds.
func buildSource(ctx context.Context, c *cli.Context) (pricing.Source, func(), error) {
	switch c.String("pricing") {
	case "static":
		return pricing.DefaultStaticSource(), nil, nil
	case "clickhouse":
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to ClickHouse: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("pinging ClickHouse: %w", err)
		}
		return store, func() { store.Close() }, nil
	case "aws":
		source, err := awsapi.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return source, nil, nil
	default:
		return nil, nil, &errors.ConfigurationError{
			Field:  "pricing",
			Reason: fmt.Sprintf("unknown pricing source %q (want static, clickhouse, or aws)", c.String("pricing")),
		}
	}
}

func loadPreviousAnalysis(path string) (*cost.CostAnalysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading previous analysis: %w", err)
	}
	var analysis cost.CostAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("parsing previous analysis: %w", err)
	}
	return &analysis, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

// =============================================================================
// PRICING COMMAND
// =============================================================================

func pricingCommand() *cli.Command {
	return &cli.Command{
		Name:  "pricing",
		Usage: "Manage the ClickHouse pricing store",
		Subcommands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Create the pricing tables and load the built-in rate table",
				Action: runPricingSeed,
			},
		},
	}
}

func runPricingSeed(c *cli.Context) error {
	ctx := context.Background()
	logger := newLogger(c.String("log-level"))

	store, err := clickhouse.NewStore(&clickhouse.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
	if err != nil {
		return fmt.Errorf("connecting to ClickHouse: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("creating pricing tables: %w", err)
	}

	now := time.Now().UTC()
	snapshotID, err := store.CreateSnapshot(ctx, "static", now)
	if err != nil {
		return fmt.Errorf("creating pricing snapshot: %w", err)
	}

	var rows []clickhouse.PriceRow
	pricing.DefaultStaticSource().Walk(func(q pricing.Query, price pricing.UnitPrice) {
		rows = append(rows, clickhouse.PriceRow{
			SnapshotID:     snapshotID,
			Provider:       q.Provider,
			ResourceType:   q.ResourceType,
			Region:         q.Region,
			Tier:           string(q.Tier),
			SizeDescriptor: q.SizeDescriptor,
			Price:          price.Price,
			Unit:           price.Unit,
			Currency:       price.Currency,
			FetchedAt:      now,
		})
	})

	if err := store.InsertPrices(ctx, rows); err != nil {
		return fmt.Errorf("loading rates: %w", err)
	}

	logger.Info().
		Str("snapshot", snapshotID.String()).
		Int("rates", len(rows)).
		Msg("pricing store seeded")
	return nil
}

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

func outputJSON(analysis *cost.CostAnalysis) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(analysis)
}

func outputTable(analysis *cost.CostAnalysis) error {
	s := analysis.Summary

	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                     💰 COST ANALYSIS                          ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Printf("║  Monthly Cost:          %s %-34s ║\n", analysis.Currency, s.TotalMonthlyCost.StringFixed(2))
	fmt.Printf("║  Hourly Cost:           %s %-34s ║\n", analysis.Currency, s.TotalHourlyCost.StringFixed(4))
	if s.PreviousTotalMonthlyCost != nil {
		fmt.Printf("║  Previous Monthly:      %s %-34s ║\n", analysis.Currency, s.PreviousTotalMonthlyCost.StringFixed(2))
		fmt.Printf("║  Monthly Change:        %s %-34s ║\n", analysis.Currency, s.TotalMonthlyCostChange.StringFixed(2))
	}
	fmt.Printf("║  Resources:             %-37s ║\n",
		fmt.Sprintf("%d (%d add, %d change, %d destroy)",
			s.TotalResources, s.ResourcesToAdd, s.ResourcesToUpdate, s.ResourcesToDelete))
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")

	fmt.Println("║  BREAKDOWN BY CATEGORY                                        ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	for _, row := range breakdownRows(s.Breakdown) {
		fmt.Printf("║  %-35s  %s %-17s ║\n", row.name, analysis.Currency, row.cost)
	}

	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Println("║  TOP RESOURCES                                                ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	for _, rc := range topResources(analysis.Resources, 5) {
		fmt.Printf("║  %-35s  %s %-17s ║\n",
			truncate(rc.Address, 35), analysis.Currency, rc.MonthlyCost.StringFixed(2))
	}

	unpriced := unpricedAddresses(analysis.Resources)
	if len(unpriced) > 0 {
		fmt.Println("╠══════════════════════════════════════════════════════════════╣")
		fmt.Printf("║  ⚠️  Unpriced: %-46s ║\n", truncate(strings.Join(unpriced, ", "), 46))
	}

	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	return nil
}

type breakdownRow struct {
	name string
	cost string
}

func breakdownRows(b cost.CostBreakdown) []breakdownRow {
	rows := []breakdownRow{
		{"Compute", b.Compute.StringFixed(2)},
		{"Storage", b.Storage.StringFixed(2)},
		{"Database", b.Database.StringFixed(2)},
		{"Network", b.Network.StringFixed(2)},
		{"Serverless", b.Serverless.StringFixed(2)},
		{"Container", b.Container.StringFixed(2)},
		{"Analytics", b.Analytics.StringFixed(2)},
		{"Security", b.Security.StringFixed(2)},
		{"Management", b.Management.StringFixed(2)},
		{"Other", b.Other.StringFixed(2)},
	}
	filtered := rows[:0]
	for _, row := range rows {
		if row.cost != "0.00" {
			filtered = append(filtered, row)
		}
	}
	if len(filtered) == 0 {
		return rows[:1]
	}
	return filtered
}

func topResources(resources []cost.ResourceCost, n int) []cost.ResourceCost {
	sorted := make([]cost.ResourceCost, len(resources))
	copy(sorted, resources)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MonthlyCost.GreaterThan(sorted[j].MonthlyCost)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func unpricedAddresses(resources []cost.ResourceCost) []string {
	var out []string
	for _, rc := range resources {
		if !rc.Priced {
			out = append(out, rc.Address)
		}
	}
	return out
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
