// Package tvsubtitles scrapes subtitles from the tvsubtitles.net catalog by
// show name, season and episode.
package tvsubtitles

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/client"
	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/models"
	"github.com/Belphemur/EpisodeSubs/internal/parser"
	"github.com/Belphemur/EpisodeSubs/internal/services"
)

// Name identifies the provider in logs and metrics.
const Name = "www.tvsubtitles.net"

// Provider walks the catalog lazily: show index, season page, episode page,
// download. Every page is fetched at most once for the provider's lifetime.
type Provider struct {
	baseURL   string
	fetcher   client.Fetcher
	extractor services.SubtitleExtractor

	mu      sync.Mutex
	catalog *models.Catalog
}

// New creates a catalog provider rooted at baseURL.
func New(baseURL string, fetcher client.Fetcher, extractor services.SubtitleExtractor) *Provider {
	return &Provider{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		fetcher:   fetcher,
		extractor: extractor,
		catalog:   models.NewCatalog(),
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string {
	return Name
}

// Get downloads the most downloaded subtitle of the requested episode.
func (p *Provider) Get(ctx context.Context, req models.SubtitleRequest) ([]byte, error) {
	logger := config.GetLogger()

	p.mu.Lock()
	ref, err := p.lookup(ctx, req)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("show", req.Name).
		Int("season", req.Season).
		Int("episode", req.Episode).
		Str("language", req.Language).
		Int("subtitleID", ref.ID).
		Int("downloads", ref.Downloads).
		Msg("Downloading subtitle from catalog")

	archive, err := p.fetcher.Fetch(ctx, p.url("download-%d.html", ref.ID))
	if err != nil {
		return nil, p.fatal(ctx, "unable to download the subtitles", err)
	}
	file, err := p.extractor.ExtractSingle(archive)
	if err != nil {
		return nil, p.fatal(ctx, "unable to unpack the subtitles file", err)
	}
	return file.Content, nil
}

// Close implements provider.Provider. The catalog holds no remote session.
func (p *Provider) Close() error {
	return nil
}

func (p *Provider) lookup(ctx context.Context, req models.SubtitleRequest) (models.SubtitleRef, error) {
	if err := p.loadShows(ctx); err != nil {
		return models.SubtitleRef{}, err
	}

	show, ok := p.catalog.Shows[parser.NormalizeShowName(req.Name)]
	if !ok {
		return models.SubtitleRef{}, apperrors.NewNotFoundError("show", req.Name)
	}

	season, err := p.loadSeason(ctx, show, req.Season)
	if err != nil {
		return models.SubtitleRef{}, err
	}

	episode, ok := season.Episodes[req.Episode]
	if !ok {
		return models.SubtitleRef{}, apperrors.NewNotFoundError("episode", fmt.Sprintf("%s s%02de%02d", req.Name, req.Season, req.Episode))
	}

	if err := p.loadEpisode(ctx, episode); err != nil {
		return models.SubtitleRef{}, err
	}

	ref, ok := episode.Subtitles[req.Language]
	if !ok {
		return models.SubtitleRef{}, apperrors.NewSubtitlesNotFoundError(req.Language)
	}
	return ref, nil
}

func (p *Provider) loadShows(ctx context.Context) error {
	if p.catalog.Loaded() {
		return nil
	}

	body, err := p.fetcher.Fetch(ctx, p.url("tvshows.html"))
	if err != nil {
		return p.fatal(ctx, "unable to get TV show list", err)
	}
	shows, err := parser.NewShowIndexParser().ParseHtml(bytes.NewReader(body))
	if err != nil {
		return p.fatal(ctx, "unable to get TV show list", err)
	}

	index := make(map[string]*models.Show, len(shows))
	for i := range shows {
		index[shows[i].Name] = &shows[i]
	}
	p.catalog.Shows = index

	logger := config.GetLogger()
	logger.Info().Int("shows", len(index)).Str("provider", Name).Msg("Loaded TV show list")
	return nil
}

func (p *Provider) loadSeason(ctx context.Context, show *models.Show, number int) (*models.Season, error) {
	if season := show.Season(number); season != nil {
		return season, nil
	}

	body, err := p.fetcher.Fetch(ctx, p.url("tvshow-%d-%d.html", show.ID, number))
	if err != nil {
		return nil, p.fatal(ctx, "unable to get episode list for the TV show", err)
	}
	episodes, err := parser.NewSeasonParser(show.ID, number).ParseHtml(bytes.NewReader(body))
	if err != nil {
		return nil, p.fatal(ctx, "unable to get episode list for the TV show", err)
	}

	season := &models.Season{Number: number, Episodes: make(map[int]*models.Episode, len(episodes))}
	for i := range episodes {
		season.Episodes[episodes[i].Number] = &episodes[i]
	}
	show.SetSeason(season)
	return season, nil
}

func (p *Provider) loadEpisode(ctx context.Context, episode *models.Episode) error {
	if episode.Loaded() {
		return nil
	}

	body, err := p.fetcher.Fetch(ctx, p.url("episode-%d.html", episode.ID))
	if err != nil {
		return p.fatal(ctx, "unable to get subtitles list", err)
	}
	listings, err := parser.NewEpisodeParser().ParseHtml(bytes.NewReader(body))
	if err != nil {
		return p.fatal(ctx, "unable to get subtitles list", err)
	}
	parser.BestPerLanguage(episode, listings)
	return nil
}

func (p *Provider) url(format string, args ...any) string {
	return p.baseURL + "/" + fmt.Sprintf(format, args...)
}

// fatal wraps err as a provider failure unless the run was cancelled.
func (p *Provider) fatal(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return apperrors.NewFatalError(Name, fmt.Errorf("%s: %w", what, err))
}
