// Package main provides the tunelink CLI application entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tunelink/internal/cookie"
	"tunelink/internal/core"
	"tunelink/internal/download"
	httpserver "tunelink/internal/http"
	"tunelink/internal/store"
	"tunelink/pkg/linkparse"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tunelink",
	Short: "tunelink - music link resolver for chat bots",
	Long: `tunelink resolves music platform links found in chat messages into playable
results (title, artist, cover, audio stream). In service mode it reads one
message per line from stdin, deduplicates delivered songs and serves metrics.`,
	RunE: runService,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolve a single music link and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently resolved songs",
	RunE:  runHistory,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("ncm-api-base", "", "NCM API base URL override")
	rootCmd.PersistentFlags().String("ncm-cookie-path", "", "path to the per-domain cookie JSON file")
	rootCmd.PersistentFlags().Int("ncm-bitrate", 320000, "playback bitrate requested from the NCM API")
	rootCmd.PersistentFlags().String("history-path", "", "path to the resolve history database")
	rootCmd.PersistentFlags().String("download-dir", "", "directory to download covers and audio into")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP metrics server port")
	rootCmd.PersistentFlags().Int("history-limit", 20, "number of history entries to list")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(historyCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("TUNELINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	if base := viper.GetString("ncm-api-base"); base != "" {
		cfg.NCM.APIBase = base
	}
	cfg.NCM.CookiePath = viper.GetString("ncm-cookie-path")
	if br := viper.GetInt("ncm-bitrate"); br > 0 {
		cfg.NCM.Bitrate = br
	}

	if path := viper.GetString("history-path"); path != "" {
		cfg.Store.HistoryPath = path
	}

	cfg.Download.Dir = viper.GetString("download-dir")

	cfg.Server.Host = viper.GetString("server-host")
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	cfg.Server.Port = viper.GetInt("server-port")

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

// buildResolver wires the cookie jar, content factory and NCM parser into a
// link manager.
func buildResolver() (*linkparse.Manager, error) {
	jar, err := cookie.Load(config.NCM.CookiePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookie jar: %w", err)
	}

	manager := linkparse.NewManager()
	manager.Register(linkparse.NewNCMParser(
		linkparse.NewStdFactory(),
		manager,
		linkparse.WithNCMAPIBase(config.NCM.APIBase),
		linkparse.WithNCMShortLinkBase(config.NCM.ShortBase),
		linkparse.WithNCMBitrate(config.NCM.Bitrate),
		linkparse.WithNCMCookie(jar.CookieString("music.163.com")),
	))

	return manager, nil
}

func runService(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting tunelink",
		zap.String("ncm_api_base", config.NCM.APIBase),
		zap.String("history_path", config.Store.HistoryPath))

	resolver, err := buildResolver()
	if err != nil {
		return err
	}

	history, err := store.NewHistoryStore(config.Store.HistoryPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = history.Close()
	}()

	dedup := store.NewDedupStore(config.Store.DedupSize, config.Store.BloomFPRate)
	httpServer := httpserver.NewServer(&config.Server, logger.Named("http"))
	pipeline := core.NewPipeline(resolver, dedup, history, httpServer, logger.Named("pipeline"))

	if err := pipeline.SeedDedup(ctx); err != nil {
		return fmt.Errorf("failed to seed dedup store: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		return runStdinLoop(gCtx, pipeline)
	})

	g.Go(func() error {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				httpServer.SetDedupSize(pipeline.DedupSize())
			}
		}
	})

	logger.Info("tunelink started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("tunelink stopped with error", zap.Error(err))
		return err
	}

	logger.Info("tunelink stopped gracefully")
	return nil
}

// runStdinLoop feeds each stdin line through the pipeline and prints every
// delivered result as one JSON line.
func runStdinLoop(ctx context.Context, pipeline *core.Pipeline) error {
	scanner := bufio.NewScanner(os.Stdin)
	out := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		for _, result := range pipeline.HandleMessage(ctx, scanner.Text()) {
			if err := out.Encode(result); err != nil {
				return fmt.Errorf("failed to encode result: %w", err)
			}
		}
	}

	return scanner.Err()
}

func runResolve(cmd *cobra.Command, args []string) error {
	resolver, err := buildResolver()
	if err != nil {
		return err
	}

	result, err := resolver.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if config.Download.Dir != "" {
		if err := downloadContents(cmd.Context(), result); err != nil {
			logger.Warn("failed to download contents", zap.Error(err))
		}
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(encoded))
	return nil
}

func downloadContents(ctx context.Context, result *linkparse.Result) error {
	d, err := download.NewDownloader(config.Download.Dir, config.Download.Concurrency, logger.Named("download"))
	if err != nil {
		return err
	}

	urls := make([]string, 0, len(result.Contents))
	for _, item := range result.Contents {
		urls = append(urls, item.URL)
	}

	paths, err := d.FetchAll(ctx, urls)
	if err != nil {
		return err
	}

	for _, p := range paths {
		logger.Info("saved content", zap.String("path", p))
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	history, err := store.NewHistoryStore(config.Store.HistoryPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = history.Close()
	}()

	entries, err := history.Recent(cmd.Context(), viper.GetInt("history-limit"))
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Printf("%s  [%s]  %s - %s\n    %s\n",
			e.CreatedAt.Format(time.RFC3339), e.Platform, e.Artist, e.Title, e.SourceURL)
	}
	return nil
}
