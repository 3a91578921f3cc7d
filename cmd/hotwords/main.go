package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/askort/hotwords/pkg/config"
	"github.com/askort/hotwords/pkg/domain"
	"github.com/askort/hotwords/pkg/fetch"
	"github.com/askort/hotwords/pkg/notify"
	"github.com/askort/hotwords/pkg/snapshot"
	"github.com/askort/hotwords/pkg/stats"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	NoPush bool   `long:"no-push" description:"compute and save but skip all pushes"`
	DryRun bool   `long:"dry" description:"fetch and compute without writing the snapshot file or pushing"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug)

	log.Printf("[INFO] starting hotwords version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] run failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] run complete")
}

// run executes one fetch-aggregate-report cycle
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	feishuOn := cfg.Push.Feishu.Enabled && !opts.NoPush && !opts.DryRun
	barkOn := cfg.Push.Bark.Enabled && !opts.NoPush && !opts.DryRun
	if !feishuOn && !barkOn && !cfg.Push.ContinueIfAllOff && !opts.NoPush && !opts.DryRun {
		log.Print("[WARN] all push targets disabled and continue_if_all_off is false, nothing to do")
		return nil
	}

	store, err := snapshot.NewStore(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	log.Printf("[INFO] beijing time %s", store.Now().Format("2006-01-02 15:04:05"))

	// fetch every configured source sequentially
	fetcher, err := fetch.New(fetch.Config{
		APIBase:   cfg.Fetch.APIBase,
		Timeout:   cfg.Fetch.Timeout,
		Interval:  cfg.Fetch.Interval,
		Retries:   cfg.Fetch.Retries,
		ProxyURL:  cfg.Fetch.ProxyURL,
		UserAgent: cfg.Fetch.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}

	sources := make([]fetch.Source, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		sources = append(sources, fetch.Source{ID: s.ID, Alias: s.Alias, Kind: s.Kind, URL: s.URL})
	}

	crawl := fetcher.CrawlAll(ctx, sources, store.TimeLabel())
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("[INFO] crawled %d sources, %d failed", len(crawl.Snapshots), len(crawl.Failures))

	if !opts.DryRun {
		path, err := store.Save(crawl.Snapshots, crawl.Failures)
		if err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		log.Printf("[INFO] snapshot saved to %s", path)
	}

	// merge today's history and diff against it
	entries, err := store.ListChronological()
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	aggregated := snapshot.Aggregate(entries)
	if _, orphans := snapshot.MapToIDs(aggregated, cfg.AliasToID()); len(orphans) > 0 {
		log.Printf("[WARN] history for aliases %v has no live source id, excluded from id-keyed results", orphans)
	}
	newTitles := snapshot.DetectNew(entries)

	engine := stats.Engine{
		RankThreshold:      cfg.Report.RankThreshold,
		MinTotalForPercent: cfg.Report.MinTotalForPercent,
	}
	report, total := engine.Compute(crawl.Snapshots, cfg.WordGroups(), cfg.FilterWords(), aggregated, newTitles)
	log.Printf("[INFO] %d titles seen, %d rule groups", total, len(report))

	text := notify.RenderReport(report, total, crawl.Failures, cfg.Report.RankThreshold, cfg.Report.Separator)
	if opts.DryRun || opts.NoPush {
		fmt.Println(text)
		return nil
	}

	if feishuOn {
		feishu := notify.NewFeishuClient(cfg.Push.Feishu.WebhookURL, cfg.Fetch.Timeout)
		if err := feishu.Send(ctx, text); err != nil {
			log.Printf("[WARN] feishu push failed: %v", err)
		}
	}
	if barkOn {
		barkTitle := "热点新闻推送"
		if len(report) > 0 && report[0].Count > 0 {
			barkTitle = report[0].Key + " - 热点新闻推送"
		}
		subtitle := "更新时间：" + store.Now().Format("2006-01-02 15:04:05")
		bark := notify.NewBarkClient(cfg.Push.Bark.ServerURL, cfg.Push.Bark.DeviceKey, cfg.Fetch.Timeout)
		if err := bark.Send(ctx, barkTitle, subtitle, text); err != nil {
			log.Printf("[WARN] bark push failed: %v", err)
		}
	}

	logFailures(crawl.Failures)
	return nil
}

func logFailures(failures domain.FailureList) {
	for _, f := range failures {
		log.Printf("[WARN] source %s (%s) produced no snapshot this run", f.SourceID, f.Alias)
	}
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(io.Discard), lgr.Err(io.Discard)}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
