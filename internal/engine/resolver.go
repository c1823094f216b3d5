// Package engine walks media directories and fetches the subtitles they lack.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/config"
	"github.com/Belphemur/EpisodeSubs/internal/media"
	"github.com/Belphemur/EpisodeSubs/internal/metrics"
	"github.com/Belphemur/EpisodeSubs/internal/models"
	"github.com/Belphemur/EpisodeSubs/internal/provider"
)

// Options configures a Resolver.
type Options struct {
	Languages []string // ISO 639-1 codes, in the order they are fetched
	Recursive bool
}

// Resolver downloads the subtitles missing next to TV show video files.
// Providers are asked in order; within a provider every candidate show name
// is tried before moving on.
type Resolver struct {
	providers []provider.Provider
	opts      Options
}

// directoryTask is one directory argument (or the directory of a file
// argument) together with the media files to resolve in it.
type directoryTask struct {
	dir       string
	media     []string // Base names, sorted with media.SortMediaFiles
	subtitles []string // Base names of the .srt files already present
}

// NewResolver creates a resolver over providers, in priority order.
func NewResolver(providers []provider.Provider, opts Options) *Resolver {
	return &Resolver{providers: providers, opts: opts}
}

// Run resolves every path, a video file or a directory of video files. The
// report is returned even when the run is aborted; the error is non-nil only
// for a fatal provider failure or an interruption.
func (r *Resolver) Run(ctx context.Context, paths []string) (models.Report, error) {
	logger := config.GetLogger()

	var report models.Report
	var tasks []directoryTask
	var subdirectories []string
	var files []string

	for _, path := range paths {
		task, dirs, err := r.gather(path)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Unable to process path")
			report.Failed++
			continue
		}
		tasks = append(tasks, task)
		subdirectories = append(subdirectories, dirs...)
		for _, name := range task.media {
			files = append(files, filepath.Join(task.dir, name))
		}
	}

	if len(files) > 0 {
		if err := r.prefetch(ctx, files); err != nil {
			return report, err
		}
	}

	for _, task := range tasks {
		taskReport, err := r.resolveDirectory(ctx, task)
		report.Add(taskReport)
		if err != nil {
			return report, err
		}
	}

	if r.opts.Recursive && len(subdirectories) > 0 {
		slices.SortFunc(subdirectories, func(a, b string) int {
			if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
				return c
			}
			return strings.Compare(a, b)
		})
		subReport, err := r.Run(ctx, subdirectories)
		report.Add(subReport)
		if err != nil {
			return report, err
		}
	}

	return report, nil
}

// gather lists the media files and existing subtitles for one path argument.
func (r *Resolver) gather(path string) (directoryTask, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return directoryTask{}, nil, fmt.Errorf("unable to find '%s': %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return directoryTask{}, nil, fmt.Errorf("unable to resolve '%s': %w", path, err)
	}

	isDir := info.IsDir()
	dir := abs
	if !isDir {
		dir = filepath.Dir(abs)
		if !media.IsVideo(abs) {
			return directoryTask{}, nil, fmt.Errorf("'%s' is not a media (*.avi, *.mkv, *.mp4, *.wmv) file", abs)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return directoryTask{}, nil, fmt.Errorf("error while reading directory '%s': %w", dir, err)
	}

	task := directoryTask{dir: dir}
	var subdirectories []string
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())
		entryInfo, err := os.Stat(entryPath)
		if err != nil {
			continue
		}
		switch {
		case entryInfo.IsDir():
			if isDir && r.opts.Recursive {
				subdirectories = append(subdirectories, entryPath)
			}
		case !entryInfo.Mode().IsRegular():
		case media.IsSubtitle(entry.Name()):
			task.subtitles = append(task.subtitles, entry.Name())
		case isDir && media.IsVideo(entry.Name()):
			task.media = append(task.media, entry.Name())
		}
	}

	if !isDir {
		task.media = []string{filepath.Base(abs)}
	} else if len(task.media) == 0 && !r.opts.Recursive {
		return directoryTask{}, nil, fmt.Errorf("there are no media (*.avi, *.mkv, *.mp4, *.wmv) files in the directory '%s'", dir)
	}

	media.SortMediaFiles(task.media)
	return task, subdirectories, nil
}

// prefetch hands the whole level to the providers that batch lookups.
func (r *Resolver) prefetch(ctx context.Context, files []string) error {
	logger := config.GetLogger()

	for _, p := range r.providers {
		prefetcher, ok := p.(provider.Prefetcher)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return interrupted(err)
		}
		warnings, err := prefetcher.Prefetch(ctx, files, r.opts.Languages)
		for _, warning := range warnings {
			logger.Error().Err(warning).Str("provider", p.Name()).Msg("File could not be looked up")
		}
		if err != nil {
			return r.abort(ctx, err)
		}
	}
	return nil
}

func (r *Resolver) resolveDirectory(ctx context.Context, task directoryTask) (models.Report, error) {
	logger := config.GetLogger()
	var report models.Report

	have := make(models.SubtitleSet)
	for _, name := range task.subtitles {
		id, err := media.Parse(name)
		if err != nil {
			logger.Error().Err(err).Str("path", filepath.Join(task.dir, name)).Msg("Unrecognized subtitle file")
			continue
		}
		have.Add(id.Keys(id.Language)...)
	}

	for _, name := range task.media {
		path := filepath.Join(task.dir, name)

		id, err := media.Parse(name)
		if err != nil {
			logger.Error().Err(err).Str("path", path).Msg("Unrecognized media file")
			report.Skipped++
			continue
		}

		logger.Info().Str("path", path).Msg("Processing")

		for _, language := range r.opts.Languages {
			if have.HasAny(id.Keys(language)...) {
				report.Satisfied++
				metrics.MediaFilesTotal.WithLabelValues("satisfied").Inc()
				continue
			}

			found, err := r.fetchLanguage(ctx, path, id, language, have, &report)
			if err != nil {
				return report, err
			}
			if !found {
				logger.Error().
					Str("path", path).
					Str("language", language).
					Msg("Subtitles for this TV show and language are not found")
				report.NotFound++
				metrics.MediaFilesTotal.WithLabelValues("not_found").Inc()
			}
		}
	}

	return report, nil
}

// fetchLanguage tries every provider and candidate name until one returns
// subtitles. It reports whether the language was settled for this file; a
// write failure counts as settled so the file is not fetched twice.
func (r *Resolver) fetchLanguage(ctx context.Context, path string, id *models.ParsedIdentity, language string, have models.SubtitleSet, report *models.Report) (bool, error) {
	logger := config.GetLogger()

	for _, p := range r.providers {
		for _, name := range id.Names {
			if err := ctx.Err(); err != nil {
				return false, interrupted(err)
			}

			req := models.SubtitleRequest{
				Path:     path,
				Name:     name,
				Season:   id.Season,
				Episode:  id.Episode,
				Language: language,
			}
			content, err := p.Get(ctx, req)
			switch {
			case err == nil:
			case apperrors.IsNotFound(err):
				metrics.SubtitleDownloadsTotal.WithLabelValues(p.Name(), "not_found").Inc()
				continue
			default:
				metrics.SubtitleDownloadsTotal.WithLabelValues(p.Name(), "error").Inc()
				if ctx.Err() != nil || apperrors.IsFatal(err) {
					return false, r.abort(ctx, err)
				}
				logger.Error().Err(err).Str("path", path).Str("provider", p.Name()).Msg("Unable to get subtitles")
				report.Failed++
				return true, nil
			}

			metrics.SubtitleDownloadsTotal.WithLabelValues(p.Name(), "success").Inc()
			have.Add(req.Key())

			target := subtitlePath(path, id.Delimiter, language)
			if err := writeAtomic(ctx, target, content); err != nil {
				if ctx.Err() != nil {
					return false, interrupted(ctx.Err())
				}
				logger.Error().Err(err).Str("path", target).Msg("Error while writing subtitles file")
				report.Failed++
				return true, nil
			}

			logger.Info().Str("path", target).Str("provider", p.Name()).Str("show", name).Msg("Subtitles downloaded")
			report.Downloaded++
			metrics.MediaFilesTotal.WithLabelValues("downloaded").Inc()
			return true, nil
		}
	}
	return false, nil
}

// abort maps a provider error to the error ending the run.
func (r *Resolver) abort(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return interrupted(ctxErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return interrupted(err)
	}
	return err
}

func interrupted(err error) error {
	return fmt.Errorf("%w: %w", apperrors.ErrInterrupted, err)
}

// subtitlePath returns "<base><delimiter><language>.srt" next to the video.
func subtitlePath(videoPath, delimiter, language string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + delimiter + language + media.SubtitleExtension
}
