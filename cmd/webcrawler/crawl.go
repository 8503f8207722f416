package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/BijayaThebe/webcrawler/internal/config"
	"github.com/BijayaThebe/webcrawler/internal/crawler"
	"github.com/BijayaThebe/webcrawler/internal/database"
	"github.com/BijayaThebe/webcrawler/internal/log"
	"github.com/BijayaThebe/webcrawler/internal/model"
	"github.com/BijayaThebe/webcrawler/internal/report"
	"github.com/BijayaThebe/webcrawler/internal/sink"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl the given seeds breadth-first and save pages as Markdown",
		Long: `Crawl fetches the seed pages, converts them to Markdown, and follows
their links breadth-first up to the configured depth. Only URLs inside the
allowed domains are fetched; everything else is recorded as blocked.

Results land in the output directory:
  pages/*.md        one Markdown file per crawled page
  index.json        manifest of every crawled page
  success_urls.txt  one line per crawled page
  failed_urls.txt   one line per failed URL
  blocked_urls.txt  one line per blocked URL

Examples:
  # Crawl one site, seeds plus their links
  webcrawler crawl --allow example.com https://example.com/

  # Seeds from a file, two levels deep, four workers
  webcrawler crawl --seeds seeds.txt --allow example.com -d 2 -w 4

  # Slow down for a fragile server
  webcrawler crawl --allow example.com --delay 2s https://example.com/

  # JSON summary written to a file
  webcrawler crawl --allow example.com --json --summary-file run.json https://example.com/`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Seed selection flags
	cmd.Flags().StringP("seeds", "s", "",
		"File listing seed URLs, one per line (# comments allowed)")

	// Scope flags
	cmd.Flags().StringSliceP("allow", "a", nil,
		"Domain to allow (repeatable); subdomains are included")
	cmd.Flags().StringSlice("deny", nil,
		"Domain to reject even inside the allowed scope (repeatable)")
	cmd.Flags().StringSlice("block-pattern", nil,
		"Regular expression; matching URLs are not fetched (repeatable)")

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link-following depth (0 = seeds only)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultRequestTimeout,
		"Deadline for each HTTP request")
	cmd.Flags().IntP("retries", "r", config.DefaultRetryCount,
		"Retries after a failed fetch")
	cmd.Flags().Duration("delay", config.DefaultPoliteDelay,
		"Minimum interval between any two fetch attempts")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Pages processed concurrently within one crawl layer")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webcrawler in current or home directory)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Directory for page files, event logs, and index.json")
	cmd.Flags().BoolP("json", "j", false,
		"Print the run summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the run summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("summary-file", "",
		"Also write the run summary to this file")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the config file, flags, and arguments.
// Precedence: defaults < config file < CLI flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load the config file first so explicit flags can override it.
	// If the user explicitly specified a config file path, error if it is
	// missing; otherwise silently continue without one.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	// Flags override the config file only when the user set them.
	if cmd.Flags().Changed("depth") {
		if cfg.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.RequestTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("retries") {
		if cfg.RetryCount, err = cmd.Flags().GetInt("retries"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("delay") {
		if cfg.PoliteDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("workers") {
		if cfg.Workers, err = cmd.Flags().GetInt("workers"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("user-agent") {
		if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("output") {
		if cfg.OutputDir, err = cmd.Flags().GetString("output"); err != nil {
			return nil, err
		}
	}

	if allow, err := cmd.Flags().GetStringSlice("allow"); err != nil {
		return nil, err
	} else if len(allow) > 0 {
		cfg.AllowedDomains = allow
	}
	if deny, err := cmd.Flags().GetStringSlice("deny"); err != nil {
		return nil, err
	} else if len(deny) > 0 {
		cfg.DeniedDomains = deny
	}
	if patterns, err := cmd.Flags().GetStringSlice("block-pattern"); err != nil {
		return nil, err
	} else if len(patterns) > 0 {
		cfg.BlockPatterns = patterns
	}

	cfg.JSONSummary, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownSummary, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	cfg.SummaryFile, err = cmd.Flags().GetString("summary-file")
	if err != nil {
		return nil, err
	}

	// Seeds come from positional arguments and/or the seeds file; the
	// config file only provides them when neither is given.
	cfg.SeedsFile, err = cmd.Flags().GetString("seeds")
	if err != nil {
		return nil, err
	}
	if cfg.SeedsFile != "" {
		fileSeeds, err := config.LoadSeeds(cfg.SeedsFile)
		if err != nil {
			return nil, err
		}
		cfg.Seeds = append(fileSeeds, args...)
	} else if len(args) > 0 {
		cfg.Seeds = args
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"seeds", len(cfg.Seeds),
		"allowedDomains", cfg.AllowedDomains,
		"maxDepth", cfg.MaxDepth,
		"workers", cfg.Workers,
	)

	// File output sink.
	recorder, err := sink.NewRecorder(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	defer recorder.Close()

	// Database sink for crawl history.
	crawlSink := crawler.Sink(recorder)
	var db *database.CrawlDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
		crawlSink = sink.NewMulti(recorder, db)
	}

	patterns, err := crawler.CompilePatterns(cfg.BlockPatterns)
	if err != nil {
		return err
	}

	engine := crawler.NewEngine(
		crawler.NewFilter(cfg.AllowedDomains, cfg.DeniedDomains, patterns),
		crawler.NewFetcher(cfg.RequestTimeout,
			crawler.WithUserAgent(cfg.UserAgent),
			crawler.WithRetries(cfg.RetryCount),
			crawler.WithPoliteDelay(cfg.PoliteDelay),
			crawler.WithMaxBodySize(cfg.MaxBodySize),
		),
		crawler.NewExtractor(),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithSink(crawlSink),
		crawler.WithLogger(logger),
	)

	summary, runErr := engine.Crawl(ctx, cfg.Seeds)

	// Write the manifest and persist the run even when the crawl was
	// cancelled, so partial results are not lost.
	if err := recorder.WriteIndex(); err != nil {
		logger.Error("failed to write index", "error", err)
	}
	if db != nil {
		// Fresh context: ctx is already done after a cancelled crawl.
		if err := db.SaveRun(context.Background(), summary); err != nil {
			logger.Error("failed to save run", "error", err)
		}
	}

	if err := outputSummary(cfg, summary); err != nil {
		logger.Error("failed to write summary", "error", err)
	}

	return runErr
}

// outputSummary renders the run summary in the requested format, to stdout
// and optionally to the configured summary file.
func outputSummary(cfg *config.Config, summary *model.Summary) error {
	var writers []report.Writer
	switch {
	case cfg.JSONSummary:
		writers = append(writers, report.NewJSONWriter(os.Stdout, report.WithPrettyPrint()))
	case cfg.MarkdownSummary:
		writers = append(writers, report.NewMarkdownWriter(os.Stdout))
	default:
		writers = append(writers, report.NewSimpleWriter(os.Stdout, report.WithVerbose(cfg.Verbose)))
	}

	if cfg.SummaryFile != "" {
		if dir := filepath.Dir(cfg.SummaryFile); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create summary directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.SummaryFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}
		defer f.Close()

		switch {
		case cfg.JSONSummary:
			writers = append(writers, report.NewJSONWriter(f, report.WithPrettyPrint()))
		case cfg.MarkdownSummary:
			writers = append(writers, report.NewMarkdownWriter(f))
		default:
			writers = append(writers, report.NewSimpleWriter(f, report.WithVerbose(cfg.Verbose)))
		}
	}

	_, err := report.NewMultiWriter(writers...).Write(summary)
	return err
}
