package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/client"
	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/engine"
	"github.com/Belphemur/EpisodeSubs/internal/languages"
	"github.com/Belphemur/EpisodeSubs/internal/metrics"
	"github.com/Belphemur/EpisodeSubs/internal/provider"
	"github.com/Belphemur/EpisodeSubs/internal/provider/opensubtitles"
	"github.com/Belphemur/EpisodeSubs/internal/provider/tvsubtitles"
	"github.com/Belphemur/EpisodeSubs/internal/services"
)

// errIncomplete ends a run in which some requested subtitle is still missing.
var errIncomplete = errors.New("some subtitles could not be downloaded")

type runOptions struct {
	languages     string
	recursive     bool
	openSubtitles bool
}

func newRootCommand() *cobra.Command {
	var opts runOptions

	rootCmd := &cobra.Command{
		Use:   "episodesubs [OPTIONS] -l LANGUAGE (DIRECTORY|FILE)...",
		Short: "Download missing subtitles for TV show episodes",
		Long: `episodesubs looks at TV show video files, works out the show, season and
episode from their names and downloads the subtitles that are missing next to
them. Existing subtitle files are never overwritten.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			langs, err := parseLanguages(opts.languages)
			if err != nil {
				return err
			}
			cfg := config.GetConfig()
			if cmd.Flags().Changed("opensubtitles") {
				cfg.OpenSubtitles.Enabled = opts.openSubtitles
			}

			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			return run(ctx, cfg, engine.Options{Languages: langs, Recursive: opts.recursive}, args)
		},
	}

	rootCmd.Flags().StringVarP(&opts.languages, "lang", "l", "", "Comma-separated list of two-letter subtitle language codes")
	rootCmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "Process sub-directories recursively")
	rootCmd.Flags().BoolVarP(&opts.openSubtitles, "opensubtitles", "o", false, "Look subtitles up on "+opensubtitles.Name+" by file hash first")
	_ = rootCmd.MarkFlagRequired("lang")

	return rootCmd
}

// notifyContext returns a context cancelled on the first interrupt, terminate
// or quit signal.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
}

// parseLanguages splits a comma-separated list of two-letter codes, dropping
// duplicates while keeping the order.
func parseLanguages(value string) ([]string, error) {
	var langs []string
	for _, part := range strings.Split(value, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if len(code) != 2 || !languages.IsAlpha2(code) {
			return nil, fmt.Errorf("invalid language: %q", part)
		}
		if !slices.Contains(langs, code) {
			langs = append(langs, code)
		}
	}
	if len(langs) == 0 {
		return nil, errors.New("at least one subtitle language is required")
	}
	return langs, nil
}

func run(ctx context.Context, cfg *config.Config, opts engine.Options, paths []string) error {
	logger := config.GetLogger()

	logger.Debug().
		Strs("languages", opts.Languages).
		Bool("recursive", opts.Recursive).
		Bool("opensubtitles", cfg.OpenSubtitles.Enabled).
		Str("tvsubtitles_base_url", cfg.TVSubtitles.BaseURL).
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Msg("Application started with configuration")

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Metrics.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	providers, err := newProviders(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, p := range providers {
			if err := p.Close(); err != nil {
				logger.Warn().Err(err).Str("provider", p.Name()).Msg("Failed to close provider")
			}
		}
	}()

	report, err := engine.NewResolver(providers, opts).Run(ctx, paths)
	logger.Info().
		Int("downloaded", report.Downloaded).
		Int("satisfied", report.Satisfied).
		Int("not_found", report.NotFound).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("Run finished")

	switch {
	case errors.Is(err, apperrors.ErrInterrupted):
		logger.Error().Err(err).Msg("Interrupted")
		return errIncomplete
	case err != nil:
		if apperrors.IsFatal(err) {
			sentry.CaptureException(err)
		}
		logger.Error().Err(err).Msg("Aborted")
		return errIncomplete
	case !report.Complete():
		return errIncomplete
	}
	return nil
}

// newProviders builds the providers in the order they are asked.
func newProviders(cfg *config.Config) ([]provider.Provider, error) {
	httpClient := client.NewHTTPClient(cfg)
	fetcher := client.NewFetcher(cfg, httpClient)
	extractor := services.NewSubtitleExtractor(0)

	var providers []provider.Provider
	if cfg.OpenSubtitles.Enabled {
		caller, err := client.NewXMLRPCCaller(cfg.OpenSubtitles.Endpoint, httpClient)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to %s: %w", opensubtitles.Name, err)
		}
		providers = append(providers, opensubtitles.New(caller, fetcher, extractor, opensubtitles.Options{
			UserAgent:  cfg.OpenSubtitles.UserAgent,
			ReplyLimit: cfg.OpenSubtitles.ReplyLimit,
			CacheSize:  cfg.Cache.Size,
		}))
	}
	providers = append(providers, tvsubtitles.New(cfg.TVSubtitles.BaseURL, fetcher, extractor))
	return providers, nil
}
