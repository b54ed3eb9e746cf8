// cmd/cinescrape/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinescrape/internal/browser"
	"cinescrape/internal/classify"
	"cinescrape/internal/config"
	"cinescrape/internal/monitoring"
	"cinescrape/internal/output"
	"cinescrape/internal/scraper"
	"cinescrape/internal/utils"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: cinescrape run <config.yaml>")
			os.Exit(1)
		}
		if err := runScraper(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	case "validate":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "usage: cinescrape validate <config.yaml>")
			os.Exit(1)
		}
		if _, err := config.LoadFromFile(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("configuration %q is valid\n", os.Args[2])
	case "version", "--version":
		fmt.Printf("cinescrape %s (built %s)\n", version, buildTime)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`cinescrape - film catalog extraction engine

Usage:
  cinescrape run <config.yaml>       run the configured extraction
  cinescrape validate <config.yaml>  validate a configuration file
  cinescrape version                 print version information`)
}

func runScraper(configFile string) error {
	log := utils.NewLogger()

	cfg, err := config.LoadFromFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Infof("loaded configuration %q: %d jobs, %d fields", cfg.Name, len(cfg.Jobs), len(cfg.Fields))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *monitoring.Metrics
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metrics = monitoring.NewMetrics()
		server := monitoring.NewServer(cfg.Metrics.Listen, metrics)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	// Eager sink construction: misconfigured outputs fail before any
	// scraping effort is spent.
	manager, err := output.NewManager(ctx, cfg.Output.Sinks)
	if err != nil {
		return err
	}
	defer manager.Close()

	table, err := runJobs(ctx, cfg, metrics, log)
	if err != nil {
		return err
	}

	if cfg.Classify != nil && cfg.Classify.Enabled {
		if err := classifyReviews(ctx, cfg.Classify, table, log); err != nil {
			return err
		}
	}

	if err := manager.Write(ctx, table); err != nil {
		return err
	}
	log.Infof("run complete: %d rows written to %d sinks", len(table.Rows), len(cfg.Output.Sinks))
	return nil
}

// runJobs executes every country job and merges the per-job tables into
// one output table.
func runJobs(ctx context.Context, cfg *config.ScraperConfig, metrics *monitoring.Metrics, log utils.Logger) (*output.Table, error) {
	merged := &output.Table{}

	for _, job := range cfg.Jobs {
		log.Infof("starting job: %s (%d-%d)", job.Country, job.StartYear, job.EndYear)

		opts := []scraper.EngineOption{}
		if metrics != nil {
			opts = append(opts, scraper.WithMetrics(metrics))
		}

		var session *browser.Session
		if cfg.Listing.Pagination == config.PaginationLoadMore {
			var err error
			session, err = browser.NewSession(cfg.Listing.LoadMore)
			if err != nil {
				return nil, fmt.Errorf("job %s: %w", job.Country, err)
			}
			opts = append(opts, scraper.WithInteractor(session))
		}

		engine, err := scraper.NewEngine(cfg, opts...)
		if err != nil {
			if session != nil {
				session.Close()
			}
			return nil, fmt.Errorf("job %s: %w", job.Country, err)
		}

		_, err = engine.Run(ctx, job)
		if session != nil {
			session.Close()
		}
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.Country, err)
		}

		agg := engine.Aggregator()
		agg.SetColumn("search_country", job.Country)
		if cfg.Derived != nil {
			agg.MergeCountBy(cfg.Derived.CountBy, cfg.Derived.As)
		}
		agg.ConvertCurrencies(cfg.Fields, yearColumn(cfg))

		mergeTables(merged, agg.Table())
		log.Infof("job %s: %s", job.Country, agg.Summary())
	}

	return merged, nil
}

// yearColumn picks the column used for currency rate lookups: the first
// year-typed field, falling back to "year".
func yearColumn(cfg *config.ScraperConfig) string {
	for _, f := range cfg.Fields {
		if f.Type == config.FieldYear {
			return f.Name
		}
	}
	return "year"
}

// mergeTables appends src's rows to dst, unioning columns while keeping
// the first table's order.
func mergeTables(dst *output.Table, src *scraper.ResultTable) {
	known := make(map[string]struct{}, len(dst.Columns))
	for _, c := range dst.Columns {
		known[c] = struct{}{}
	}
	for _, c := range src.Columns {
		if _, ok := known[c]; !ok {
			dst.Columns = append(dst.Columns, c)
			known[c] = struct{}{}
		}
	}
	dst.Rows = append(dst.Rows, src.Rows...)
}

// classifyReviews runs the category classification pass over the merged
// table, appending strength and weakness columns per row. Per-row
// failures skip the row rather than aborting the pass.
func classifyReviews(ctx context.Context, cfg *config.ClassifyConfig, table *output.Table, log utils.Logger) error {
	classifier, err := classify.NewClassifier(cfg, classify.NewRegistry())
	if err != nil {
		return err
	}

	table.Columns = append(table.Columns, "strengths", "weaknesses", "suggested_categories")

	classified := 0
	for i, row := range table.Rows {
		title, _ := row[cfg.TitleField].(string)
		content, _ := row[cfg.ContentField].(string)

		analysis, err := classifier.Classify(ctx, title, content)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warnf("classification failed for row %d: %v", i, err)
			continue
		}

		row["strengths"] = jsonList(analysis.Strengths)
		row["weaknesses"] = jsonList(analysis.Weaknesses)
		row["suggested_categories"] = jsonList(analysis.SuggestedCategories)
		classified++
	}

	log.Infof("classified %d of %d rows", classified, len(table.Rows))
	return nil
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
