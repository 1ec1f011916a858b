package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/JGDev1215/MidOpenBeta/internal/analysis"
	"github.com/JGDev1215/MidOpenBeta/internal/cache"
	"github.com/JGDev1215/MidOpenBeta/internal/catalog"
	"github.com/JGDev1215/MidOpenBeta/internal/config"
	"github.com/JGDev1215/MidOpenBeta/internal/history"
	"github.com/JGDev1215/MidOpenBeta/internal/ingest"
	"github.com/JGDev1215/MidOpenBeta/internal/instrument"
	"github.com/JGDev1215/MidOpenBeta/internal/quality"
	"github.com/JGDev1215/MidOpenBeta/internal/report"
	"github.com/JGDev1215/MidOpenBeta/internal/watch"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var (
		cfgPath    = flag.String("config", defaultConfigPath(), "path to YAML config")
		dataFile   = flag.String("file", "", "CSV file with price bars (overrides config)")
		instrFlag  = flag.String("instrument", "", "instrument code (default: detect from filename)")
		tzFlag     = flag.String("timezone", "", "IANA timezone (default: instrument timezone)")
		atFlag     = flag.String("timestamp", "", "analysis timestamp, RFC3339 (default: last bar)")
		format     = flag.String("format", "summary", "output format: summary, json, or csv")
		watchMode  = flag.Bool("watch", false, "keep running, re-analyzing on the configured schedule")
		doCleanup  = flag.Bool("cleanup", false, "remove cache entries past retention and exit")
		clearCache = flag.Bool("clear-cache", false, "drop all cached levels for the instrument and exit")
		showRuns   = flag.Int("history", 0, "print the N most recent recorded runs and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if *dataFile != "" {
		cfg.Data.File = *dataFile
	}
	if *instrFlag != "" {
		cfg.Data.Instrument = *instrFlag
	}
	if *tzFlag != "" {
		cfg.Data.Timezone = *tzFlag
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Resolve instrument and timezone.
	var info instrument.Info
	if cfg.Data.Instrument != "" {
		info = instrument.Lookup(cfg.Data.Instrument)
	} else if cfg.Data.File != "" {
		info = instrument.IdentifyFromFile(cfg.Data.File)
	} else {
		info = instrument.Lookup("US100")
	}
	tz := info.Timezone
	if cfg.Data.Timezone != "" {
		tz = cfg.Data.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("[FATAL] load timezone %q: %v", tz, err)
	}
	log.Printf("[INFO] instrument: %s (%s), timezone: %s", info.Code, info.Name, tz)

	// Cache store.
	var store cache.Store
	if cfg.Cache.Backend == "sqlite" {
		store, err = cache.NewSQLiteStore(cfg.Cache.SQLitePath)
	} else {
		store, err = cache.NewFileStore(cfg.Cache.Dir)
	}
	if err != nil {
		log.Fatalf("[FATAL] init cache store: %v", err)
	}
	defer store.Close()
	priceCache := cache.NewManager(info.Code, loc, store)

	// Catalog with configured weight overrides.
	cat := catalog.ForInstrument(info.Code)
	if overrides := cfg.Weights[cat.Instrument]; len(overrides) > 0 {
		if err := cat.ApplyWeights(overrides); err != nil {
			log.Fatalf("[FATAL] apply weight overrides: %v", err)
		}
		log.Printf("[INFO] applied %d weight overrides for %s", len(overrides), cat.Instrument)
	}

	// History recorder.
	var rec history.Recorder
	if cfg.History.SQLitePath != "" {
		sr, err := history.NewSQLiteRecorder(cfg.History.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init history recorder failed, using noop: %v", err)
			rec = history.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = history.NewNoopRecorder()
	}

	// Maintenance-only modes.
	switch {
	case *clearCache:
		n, err := priceCache.Clear()
		if err != nil {
			log.Fatalf("[FATAL] clear cache: %v", err)
		}
		log.Printf("[INFO] cleared %d cached levels for %s", n, info.Code)
		return
	case *doCleanup:
		n, err := priceCache.Cleanup(cfg.Cache.RetentionDays, time.Now())
		if err != nil {
			log.Fatalf("[FATAL] cache cleanup: %v", err)
		}
		log.Printf("[INFO] removed %d cache entries unused for %d+ days", n, cfg.Cache.RetentionDays)
		return
	case *showRuns > 0:
		runs, err := rec.RecentRuns(info.Code, *showRuns)
		if err != nil {
			log.Fatalf("[FATAL] read history: %v", err)
		}
		for _, run := range runs {
			fmt.Printf("%s  %-8s bias=%-7s conf=%6.2f price=%10.2f coverage=%5.1f%%\n",
				run.Timestamp.Format("2006-01-02 15:04"), run.Instrument,
				run.Bias, run.Confidence, run.CurrentPrice, run.CoveragePercent)
		}
		return
	}

	if cfg.Data.File == "" {
		log.Fatal("[FATAL] no data file: pass -file or set data.file in config")
	}

	engine := analysis.NewEngine(info.Code, loc, cat, priceCache)
	reporter := quality.NewReporter(quality.Config{
		CoverageWarnPercent: cfg.Quality.CoverageWarnPercent,
		CriticalLevels:      cfg.Quality.CriticalLevels,
		StaleAfterDays:      cfg.Quality.StaleAfterDays,
	})

	var at time.Time
	if *atFlag != "" {
		at, err = time.Parse(time.RFC3339, *atFlag)
		if err != nil {
			log.Fatalf("[FATAL] parse -timestamp: %v", err)
		}
	}

	runOnce := func() error {
		series, err := ingest.LoadCSV(cfg.Data.File, info.Code, loc)
		if err != nil {
			return fmt.Errorf("load data: %w", err)
		}
		res, err := engine.Analyze(series, at)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}

		entries, err := priceCache.Entries()
		if err != nil {
			log.Printf("[WARN] read cache entries for quality report: %v", err)
		}
		rep := reporter.Build(res, series, entries, res.Timestamp)

		switch *format {
		case "json":
			out, err := report.FormatJSON(res, rep)
			if err != nil {
				return err
			}
			fmt.Println(out)
		case "csv":
			fmt.Print(report.FormatCSV(res))
		default:
			fmt.Print(report.FormatSummary(res, rep))
		}

		if err := rec.RecordRun(res, rep); err != nil {
			log.Printf("[ERROR] record run: %v", err)
		}
		return nil
	}

	if !*watchMode {
		if err := runOnce(); err != nil {
			log.Fatalf("[FATAL] %v", err)
		}
		return
	}

	// Watch mode: run now, then on schedule, with daily cache cleanup.
	if err := runOnce(); err != nil {
		log.Printf("[ERROR] %v", err)
	}
	sched := watch.NewScheduler(
		func() {
			if err := runOnce(); err != nil {
				log.Printf("[ERROR] scheduled analysis: %v", err)
			}
		},
		func() {
			n, err := priceCache.Cleanup(cfg.Cache.RetentionDays, time.Now())
			if err != nil {
				log.Printf("[ERROR] scheduled cache cleanup: %v", err)
				return
			}
			log.Printf("[INFO] cache cleanup removed %d entries", n)
		},
	)
	if err := sched.Register(cfg.Schedule.AnalysisCron, cfg.Schedule.CleanupCron); err != nil {
		log.Fatalf("[FATAL] register cron jobs: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Println("[INFO] watch mode running. Press Ctrl+C to stop.")
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[INFO] shutdown signal received, stopping...")
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}
