package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"memwatch/internal/api"
	"memwatch/internal/config"
	"memwatch/internal/logging"
	reader "memwatch/internal/memory"
	"memwatch/internal/metrics"
	"memwatch/internal/monitor"
	"memwatch/internal/observable"
	"memwatch/internal/ranking"

	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	updateInterval = cli.IntFlag{
		Name:   "update-interval",
		Usage:  "Seconds between two memory samples and two process listings",
		Value:  config.DefaultUpdateInterval,
		EnvVar: config.EnvUpdateInterval,
	}
	topCount = cli.IntFlag{
		Name:   "top-count",
		Usage:  "Number of processes listed on every listing",
		Value:  config.DefaultTopCount,
		EnvVar: config.EnvTopCount,
	}
	listTimeout = cli.DurationFlag{
		Name:   "list-timeout",
		Usage:  "Bounded wait for one process listing",
		Value:  config.DefaultListTimeout,
		EnvVar: config.EnvListTimeout,
	}
	topPath = cli.StringFlag{
		Name:   "top-path",
		Usage:  "Path of the top utility used by the top listing source",
		Value:  config.DefaultTopPath,
		EnvVar: config.EnvTopPath,
	}
	listingSource = cli.StringFlag{
		Name:   "listing-source",
		Usage:  "Process listing source: auto, top or table",
		Value:  config.ListingAuto,
		EnvVar: config.EnvListingSource,
	}
	logLevel = cli.StringFlag{
		Name:   "log-level",
		Usage:  "Log level: debug, info, warn or error",
		Value:  config.DefaultLogLevel,
		EnvVar: config.EnvLogLevel,
	}
	logFile = cli.StringFlag{
		Name:   "log-file",
		Usage:  "Write logs to this file instead of stderr",
		EnvVar: config.EnvLogFile,
	}
	httpAddr = cli.StringFlag{
		Name:   "http-addr",
		Usage:  "Serve the memory API, the live stream and /metrics on this address (disabled when empty)",
		EnvVar: config.EnvHTTPAddr,
	}
	quiet = cli.BoolFlag{
		Name:  "quiet",
		Usage: "Do not print samples to stdout",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "memwatch monitor"
	app.Usage = "Samples host memory usage and the top memory consumers on a fixed interval"
	app.Flags = []cli.Flag{
		updateInterval,
		topCount,
		listTimeout,
		topPath,
		listingSource,
		logLevel,
		logFile,
		httpAddr,
		quiet,
	}
	app.Action = startMonitor

	if err := app.Run(os.Args); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) *config.Config {
	cfg := config.Load(nil)

	if c.IsSet(updateInterval.Name) {
		cfg.UpdateInterval = c.Int(updateInterval.Name)
	}
	if c.IsSet(topCount.Name) {
		cfg.TopCount = c.Int(topCount.Name)
	}
	if c.IsSet(listTimeout.Name) {
		cfg.ListTimeout = c.Duration(listTimeout.Name)
	}
	if c.IsSet(topPath.Name) {
		cfg.TopPath = c.String(topPath.Name)
	}
	if c.IsSet(listingSource.Name) {
		cfg.ListingSource = c.String(listingSource.Name)
	}
	if c.IsSet(logLevel.Name) {
		cfg.LogLevel = c.String(logLevel.Name)
	}
	if c.IsSet(logFile.Name) {
		cfg.LogFile = c.String(logFile.Name)
	}
	if c.IsSet(httpAddr.Name) {
		cfg.HTTPAddr = c.String(httpAddr.Name)
	}

	return cfg
}

func startMonitor(c *cli.Context) error {
	cfg := loadConfig(c)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// every publish runs on this loop, so printing never interleaves
	loop := observable.NewEventLoop()
	defer loop.Close()

	exporter := metrics.NewExporter()
	memReader, err := monitor.NewFromConfig(cfg, logger,
		monitor.WithExecutor(loop),
		monitor.WithRecorder(exporter),
	)
	if err != nil {
		return err
	}
	defer memReader.Close()

	exporter.Attach(memReader.Usage(), memReader.TopProcesses(), memReader.UtilizationRatio())
	defer exporter.Detach()

	if !c.Bool(quiet.Name) {
		printHeader()
		unsubscribeUsage := memReader.Usage().Subscribe(printUsage)
		defer unsubscribeUsage()
		unsubscribeProcesses := memReader.TopProcesses().Subscribe(printProcesses)
		defer unsubscribeProcesses()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errC := make(chan error, 1)
	if cfg.HTTPAddr != "" {
		hub := api.NewHub(logger)
		defer hub.Close()
		detach := hub.Attach(memReader.Usage(), memReader.TopProcesses())
		defer detach()

		server, err := api.NewServer(memReader, hub, exporter.Handler(), logger)
		if err != nil {
			return err
		}
		go func() {
			errC <- server.Run(ctx, cfg.HTTPAddr)
		}()
	}

	logger.Info("memory monitor started",
		zap.Float64("total_bytes", memReader.TotalBytes()),
		zap.String("http_addr", cfg.HTTPAddr),
	)
	memReader.Start()
	memReader.StartAdditional()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errC:
		if err != nil {
			logger.Error("http server stopped", zap.Error(err))
			return err
		}
	}

	memReader.Stop()
	memReader.StopAdditional()
	return nil
}

func printHeader() {
	fmt.Println("Starting memory monitoring...")
	fmt.Println("Press Ctrl+C to stop")

	fmt.Printf("\n%-20s %-10s %-10s %-10s %s\n",
		"Timestamp",
		"Total",
		"Used",
		"Free",
		"Used%")
}

func printUsage(snapshot reader.MemorySnapshot) {
	fmt.Printf("%-20s %-10s %-10s %-10s %.1f%%\n",
		snapshot.Timestamp.Format("15:04:05"),
		reader.FormatBytes(snapshot.Total),
		reader.FormatBytes(snapshot.Used),
		reader.FormatBytes(snapshot.Free),
		reader.UtilizationRatio(snapshot)*100)
}

func printProcesses(processes []ranking.ProcessUsage) {
	if len(processes) == 0 {
		fmt.Println("  (no processes listed)")
		return
	}
	for i, p := range processes {
		fmt.Printf("  %d. %-8d %-30s %s\n", i+1, p.PID, p.Command, reader.FormatBytes(p.MemoryBytes))
	}
}
