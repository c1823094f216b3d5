// Package opensubtitles looks subtitles up by video content hash through the
// opensubtitles.org XML-RPC API.
package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/cache"
	"github.com/Belphemur/EpisodeSubs/internal/client"
	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/languages"
	"github.com/Belphemur/EpisodeSubs/internal/models"
	"github.com/Belphemur/EpisodeSubs/internal/services"
)

// Name identifies the provider in logs and metrics.
const Name = "www.opensubtitles.org"

// noResult marks a path and language the search answered without a subtitle.
const noResult = ""

// Options configures a Provider.
type Options struct {
	UserAgent  string // Sent with LogIn
	ReplyLimit int    // Maximum number of results per SearchSubtitles reply
	CacheSize  int    // Zero keeps every lookup for the process lifetime
}

// Provider resolves subtitles by file hash. Searches are batched through
// Prefetch and their results cached per path and language; Get only downloads.
type Provider struct {
	caller    client.RemoteCaller
	fetcher   client.Fetcher
	extractor services.SubtitleExtractor
	opts      Options
	lookups   cache.Cache

	mu    sync.Mutex
	token string
	fatal error
}

// New creates a hash lookup provider. The remote session is opened lazily on
// the first search.
func New(caller client.RemoteCaller, fetcher client.Fetcher, extractor services.SubtitleExtractor, opts Options) *Provider {
	if opts.UserAgent == "" {
		opts.UserAgent = "EpisodeSubs v1"
	}
	if opts.ReplyLimit <= 0 {
		opts.ReplyLimit = 500
	}
	return &Provider{
		caller:    caller,
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
		lookups:   cache.New(cache.Options{Size: opts.CacheSize, Group: "opensubtitles"}),
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string {
	return Name
}

// Prefetch searches subtitles for every path in every language, batching as
// many files per request as the reply limit allows.
func (p *Provider) Prefetch(ctx context.Context, paths []string, langs []string) ([]error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prefetch(ctx, paths, langs)
}

// Get downloads the subtitle found for req.Path in req.Language. The show name
// of the request is irrelevant to a hash lookup.
func (p *Provider) Get(ctx context.Context, req models.SubtitleRequest) ([]byte, error) {
	logger := config.GetLogger()
	key := cache.Key(req.Path, req.Language)

	p.mu.Lock()
	if !p.lookups.Contains(key) {
		warnings, err := p.prefetch(ctx, []string{req.Path}, []string{req.Language})
		if err != nil {
			p.mu.Unlock()
			return nil, err
		}
		for _, warning := range warnings {
			logger.Debug().Err(warning).Str("path", req.Path).Msg("File could not be looked up by hash")
		}
	}
	url, _ := p.lookups.Get(key)
	p.mu.Unlock()

	if url == noResult {
		return nil, apperrors.NewSubtitlesNotFoundError(req.Language)
	}

	archive, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	content, err := p.extractor.Gunzip(archive)
	if err != nil {
		return nil, apperrors.NewFatalError(Name, fmt.Errorf("unable to gunzip the subtitles file: %w", err))
	}
	return content, nil
}

// Close ends the remote session and closes the caller when it can be closed.
// Logout failures are ignored.
func (p *Provider) Close() error {
	logger := config.GetLogger()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		var reply statusReply
		if err := p.caller.Call(context.Background(), "LogOut", &reply, p.token); err != nil {
			logger.Debug().Err(err).Msg("LogOut failed")
		}
		p.token = ""
	}
	if closer, ok := p.caller.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Debug().Err(err).Msg("Closing the remote caller failed")
		}
	}
	return p.lookups.Close()
}

func (p *Provider) prefetch(ctx context.Context, paths []string, langs []string) ([]error, error) {
	logger := config.GetLogger()

	if p.fatal != nil {
		return nil, p.fatal
	}

	alpha3 := make([]string, 0, len(langs))
	for _, lang := range langs {
		code, ok := languages.ToAlpha3(lang)
		if !ok {
			return nil, apperrors.NewFatalError(Name, fmt.Errorf("invalid language (%s)", lang))
		}
		alpha3 = append(alpha3, code)
	}
	if len(alpha3) == 0 {
		return nil, nil
	}
	subLanguageID := strings.Join(alpha3, ",")

	perRequest := max(1, p.opts.ReplyLimit/(len(langs)*5))

	var warnings []error
	for start := 0; start < len(paths); start += perRequest {
		batch := paths[start:min(start+perRequest, len(paths))]

		var queries []searchQuery
		pathsByHash := make(map[string][]string)
		for _, path := range batch {
			size, hash, err := FileHash(path)
			if err != nil {
				warnings = append(warnings, err)
				for _, lang := range langs {
					p.lookups.Set(cache.Key(path, lang), noResult)
				}
				continue
			}
			queries = append(queries, searchQuery{
				MovieByteSize: strconv.FormatInt(size, 10),
				MovieHash:     hash,
				SubLanguageID: subLanguageID,
			})
			pathsByHash[hash] = append(pathsByHash[hash], path)
		}
		if len(queries) == 0 {
			continue
		}

		best, err := p.search(ctx, queries)
		if err != nil {
			return warnings, err
		}

		for hash, hashPaths := range pathsByHash {
			for _, path := range hashPaths {
				for _, lang := range langs {
					key := cache.Key(path, lang)
					if candidate, ok := best[hash][lang]; ok {
						p.lookups.Set(key, candidate.DownloadURL)
					} else if !p.lookups.Contains(key) {
						p.lookups.Set(key, noResult)
					}
				}
			}
		}

		logger.Debug().
			Int("files", len(queries)).
			Int("matchedHashes", len(best)).
			Msg("Searched subtitles by hash")
	}
	return warnings, nil
}

func (p *Provider) search(ctx context.Context, queries []searchQuery) (map[string]map[string]models.HashCandidate, error) {
	if err := p.login(ctx); err != nil {
		return nil, err
	}

	var reply searchReply
	if err := p.caller.Call(ctx, "SearchSubtitles", &reply, p.token, queries); err != nil {
		return nil, p.fail(ctx, fmt.Errorf("unable to get a list of subtitles: %w", err))
	}
	candidates, err := parseCandidates(reply.Data)
	if err != nil {
		return nil, p.fail(ctx, fmt.Errorf("unable to get a list of subtitles: %w", err))
	}
	return bestCandidates(candidates), nil
}

func (p *Provider) login(ctx context.Context) error {
	if p.token != "" {
		return nil
	}

	var reply loginReply
	if err := p.caller.Call(ctx, "LogIn", &reply, "", "", languages.English, p.opts.UserAgent); err != nil {
		return p.fail(ctx, fmt.Errorf("unable to connect to the XML-RPC server: %w", err))
	}
	if reply.Token == "" {
		return p.fail(ctx, errors.New("unable to connect to the XML-RPC server: empty session token"))
	}
	p.token = reply.Token
	return nil
}

// fail records err as the provider's permanent failure. Cancellation is
// returned as is and does not poison the provider.
func (p *Provider) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	p.fatal = apperrors.NewFatalError(Name, err)
	return p.fatal
}
