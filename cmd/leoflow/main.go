// Command leoflow drives Leonardo.Ai image generation from the terminal.
//
// Usage:
//
//	leoflow generate --prompt "a lighthouse at dusk"   # submit and wait
//	leoflow status --id <generation-id>                # one status query
//	leoflow user                                       # account and token info
//	leoflow list --limit 5                             # recent generations
//	leoflow delete --id <generation-id>                # remove a generation
//	leoflow version                                    # version information
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/leoflow/config"
	"github.com/BaSui01/leoflow/internal/metrics"
	"github.com/BaSui01/leoflow/internal/telemetry"
	"github.com/BaSui01/leoflow/leonardo"
)

// Version information injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "user":
		runUser(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "delete":
		runDelete(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// app bundles what every command needs after bootstrap.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *leonardo.Client
	otel   *telemetry.Providers
}

func bootstrap(configPath string) (*app, error) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := initLogger(cfg.Log)

	otelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	otelProviders, err := telemetry.Init(otelCtx, cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	leo := cfg.Tools.Leonardo
	apiKey := leo.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no Leonardo API key: set tools.leonardo.apiKey or LEONARDO_API_KEY")
	}

	client := leonardo.NewClient(leonardo.Config{
		APIKey:  apiKey,
		BaseURL: leo.BaseURL,
		Timeout: leo.Timeout,
		Metrics: metrics.NewCollector("leoflow", logger),
	}, logger)

	return &app{cfg: cfg, logger: logger, client: client, otel: otelProviders}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.otel.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	prompt := fs.String("prompt", "", "Text prompt (required)")
	numImages := fs.Int("num-images", 1, "Number of images, 1-4")
	width := fs.Int("width", 1024, "Image width in pixels")
	height := fs.Int("height", 1024, "Image height in pixels")
	style := fs.String("style", "", "Preset style, e.g. DYNAMIC, CINEMATIC")
	timeout := fs.Duration("timeout", 0, "Poll budget, e.g. 90s (default from config)")
	outDir := fs.String("out", "", "Download finished images into this directory")
	fs.Parse(args)

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "generate: --prompt is required")
		os.Exit(1)
	}

	a, err := bootstrap(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	budget := *timeout
	if budget <= 0 {
		budget = a.cfg.Tools.Leonardo.PollTimeout
	}

	ctx := context.Background()
	result, err := a.client.Generate(ctx, leonardo.GenerationRequest{
		Prompt:      *prompt,
		NumImages:   *numImages,
		Width:       *width,
		Height:      *height,
		PresetStyle: *style,
	}, budget)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("generation %s complete, %d image(s):\n", result.GenerationID, len(result.ImageURLs))
	for _, u := range result.ImageURLs {
		fmt.Println("  " + u)
	}

	if *outDir != "" {
		paths, err := a.client.DownloadImages(ctx, result.GenerationID, result.ImageURLs, *outDir)
		if err != nil {
			fatal(err)
		}
		fmt.Println("downloaded:")
		for _, p := range paths {
			fmt.Println("  " + p)
		}
	}
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	id := fs.String("id", "", "Generation id (required)")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "status: --id is required")
		os.Exit(1)
	}

	a, err := bootstrap(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	status, err := a.client.GetGeneration(context.Background(), *id)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("generation %s: %s\n", *id, status.Status)
	for _, img := range status.Images {
		fmt.Println("  " + img.URL)
	}
}

func runUser(args []string) {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	a, err := bootstrap(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	info, err := a.client.GetUserInfo(context.Background())
	if err != nil {
		fatal(err)
	}

	fmt.Printf("user:               %s (%s)\n", info.Username, info.UserID)
	fmt.Printf("subscription tokens: %d\n", info.APISubscriptionTokens)
	fmt.Printf("paid tokens:         %d\n", info.APIPaidTokens)
	if info.TokenRenewalDate != "" {
		fmt.Printf("token renewal:       %s\n", info.TokenRenewalDate)
	}
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	userID := fs.String("user-id", "", "User id (defaults to the authenticated user)")
	offset := fs.Int("offset", 0, "Pagination offset")
	limit := fs.Int("limit", 10, "Page size")
	fs.Parse(args)

	a, err := bootstrap(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	ctx := context.Background()

	uid := *userID
	if uid == "" {
		info, err := a.client.GetUserInfo(ctx)
		if err != nil {
			fatal(err)
		}
		uid = info.UserID
	}

	items, err := a.client.ListGenerations(ctx, uid, *offset, *limit)
	if err != nil {
		fatal(err)
	}

	if len(items) == 0 {
		fmt.Println("no generations")
		return
	}
	for _, item := range items {
		fmt.Printf("%s  %-8s  %s  %q\n", item.ID, item.Status, item.CreatedAt, item.Prompt)
		for _, u := range item.ImageURLs {
			fmt.Println("    " + u)
		}
	}
}

func runDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	id := fs.String("id", "", "Generation id (required)")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "delete: --id is required")
		os.Exit(1)
	}

	a, err := bootstrap(*configPath)
	if err != nil {
		fatal(err)
	}
	defer a.close()

	if err := a.client.DeleteGeneration(context.Background(), *id); err != nil {
		fatal(err)
	}

	fmt.Printf("generation %s deleted\n", *id)
}

func printVersion() {
	fmt.Printf("leoflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`leoflow - Leonardo.Ai image generation client

Usage:
  leoflow <command> [options]

Commands:
  generate  Generate images from a text prompt and wait for the result
  status    Show the status of a generation
  user      Show the authenticated user's account info
  list      List recent generations
  delete    Delete a generation
  version   Show version information
  help      Show this help message

Options for 'generate':
  --prompt <text>     Text prompt (required)
  --num-images <n>    Number of images, 1-4 (default 1)
  --width <px>        Image width (default 1024)
  --height <px>       Image height (default 1024)
  --style <name>      Preset style, e.g. DYNAMIC, CINEMATIC
  --timeout <dur>     Poll budget, e.g. 90s (default from config)
  --out <dir>         Download finished images into this directory

Common options:
  --config <path>     Path to configuration file (YAML)

Examples:
  leoflow generate --prompt "a lighthouse at dusk"
  leoflow generate --prompt "castle" --num-images 4 --out ./images
  leoflow status --id b2bb6f33-72a3-4f9c-9c1f-0fd04cbbbe47
  leoflow list --limit 5
  leoflow delete --id b2bb6f33-72a3-4f9c-9c1f-0fd04cbbbe47`)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.Format == "console" {
		zapConfig.Encoding = "console"
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	logger, err := zapConfig.Build(opts...)
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
