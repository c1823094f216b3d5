package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Belphemur/EpisodeSubs/internal/apperrors"
	"github.com/Belphemur/EpisodeSubs/internal/models"
	"github.com/Belphemur/EpisodeSubs/internal/provider"
)

// fakeProvider answers from a fixed table keyed by show name, episode and
// language. An optional match restricts answers to some video paths.
type fakeProvider struct {
	name      string
	subtitles map[models.SubtitleKey]string
	match     func(path string) bool
	err       error

	mu    sync.Mutex
	calls []models.SubtitleRequest
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Get(_ context.Context, req models.SubtitleRequest) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.match != nil && !f.match(req.Path) {
		return nil, apperrors.NewSubtitlesNotFoundError(req.Language)
	}
	content, ok := f.subtitles[req.Key()]
	if !ok {
		return nil, apperrors.NewSubtitlesNotFoundError(req.Language)
	}
	return []byte(content), nil
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) requests() []models.SubtitleRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SubtitleRequest(nil), f.calls...)
}

// fakePrefetcher records every Prefetch batch.
type fakePrefetcher struct {
	*fakeProvider
	warnings []error
	fatal    error
	batches  [][]string
}

func (f *fakePrefetcher) Prefetch(_ context.Context, paths []string, _ []string) ([]error, error) {
	f.batches = append(f.batches, append([]string(nil), paths...))
	return f.warnings, f.fatal
}

func key(name string, season, episode int, lang string) models.SubtitleKey {
	return models.SubtitleKey{Name: name, Season: season, Episode: episode, Language: lang}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	return string(content)
}

func TestResolver_EndToEnd(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "Show.S01E01.avi")

	catalog := &fakeProvider{name: "catalog", subtitles: map[models.SubtitleKey]string{
		key("show", 1, 1, "en"): "english subtitles",
	}}
	r := NewResolver([]provider.Provider{catalog}, Options{Languages: []string{"en", "ru"}})

	report, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := models.Report{Downloaded: 1, NotFound: 1}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if got := readFile(t, filepath.Join(dir, "Show.S01E01.en.srt")); got != "english subtitles" {
		t.Errorf("subtitle content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "Show.S01E01.ru.srt")); !os.IsNotExist(err) {
		t.Errorf("no ru subtitle expected, stat error = %v", err)
	}
	if report.Complete() {
		t.Error("a run with a missing subtitle is not complete")
	}
}

func TestResolver_Idempotent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "lost.s02e01.hdtv.avi", "Lost - 2x02 - Adrift.avi")

	catalog := &fakeProvider{name: "catalog", subtitles: map[models.SubtitleKey]string{
		key("lost", 2, 1, "en"): "one",
		key("lost", 2, 2, "en"): "two",
	}}
	r := NewResolver([]provider.Provider{catalog}, Options{Languages: []string{"en"}})

	first, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Downloaded != 2 {
		t.Fatalf("first run downloaded %d, want 2", first.Downloaded)
	}
	calls := len(catalog.requests())

	second, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if diff := cmp.Diff(models.Report{Satisfied: 2}, second); diff != "" {
		t.Errorf("second report mismatch (-want +got):\n%s", diff)
	}
	if got := len(catalog.requests()); got != calls {
		t.Errorf("second run made %d provider calls, want none", got-calls)
	}

	if got := readFile(t, filepath.Join(dir, "lost.s02e01.hdtv.en.srt")); got != "one" {
		t.Errorf("dotted subtitle content = %q", got)
	}
	if got := readFile(t, filepath.Join(dir, "Lost - 2x02 - Adrift.en.srt")); got != "two" {
		t.Errorf("dashed subtitle content = %q", got)
	}
}

func TestResolver_ExistingSubtitlesMatchAliases(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "The.Office.s01e01.avi", "office.s01e01.rus.srt")

	catalog := &fakeProvider{name: "catalog"}
	r := NewResolver([]provider.Provider{catalog}, Options{Languages: []string{"ru"}})

	report, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(models.Report{Satisfied: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if len(catalog.requests()) != 0 {
		t.Errorf("expected no provider calls, got %+v", catalog.requests())
	}
}

func TestResolver_ProviderAndAliasOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "The.Office.s03e04.avi")

	first := &fakeProvider{name: "first"}
	second := &fakeProvider{name: "second", subtitles: map[models.SubtitleKey]string{
		key("office", 3, 4, "en"): "found by alias",
	}}
	r := NewResolver([]provider.Provider{first, second}, Options{Languages: []string{"en"}})

	report, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Downloaded != 1 {
		t.Fatalf("Downloaded = %d, want 1", report.Downloaded)
	}

	var names []string
	for _, req := range first.requests() {
		names = append(names, "first:"+req.Name)
	}
	for _, req := range second.requests() {
		names = append(names, "second:"+req.Name)
	}
	want := []string{"first:the office", "first:office", "second:the office", "second:office"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_OriginalBeforeTranslated(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "lost.s02e01.lostfilm.tv.avi", "lost.s02e01.hdtv.avi")

	byHash := &fakeProvider{
		name:      "hash",
		subtitles: map[models.SubtitleKey]string{key("lost", 2, 1, "en"): "from hash"},
		match:     func(path string) bool { return strings.HasSuffix(path, "hdtv.avi") },
	}
	catalog := &fakeProvider{name: "catalog", subtitles: map[models.SubtitleKey]string{
		key("lost", 2, 1, "en"): "from catalog",
	}}
	r := NewResolver([]provider.Provider{byHash, catalog}, Options{Languages: []string{"en"}})

	report, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(models.Report{Downloaded: 1, Satisfied: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	if got := readFile(t, filepath.Join(dir, "lost.s02e01.hdtv.en.srt")); got != "from hash" {
		t.Errorf("subtitle content = %q, want from hash", got)
	}
	if len(catalog.requests()) != 0 {
		t.Errorf("catalog should not be asked, got %+v", catalog.requests())
	}
}

func TestResolver_FatalAbortsRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "lost.s01e01.avi", "lost.s01e02.avi")

	fatal := apperrors.NewFatalError("catalog", errors.New("failed to parse a server response"))
	broken := &fakeProvider{name: "catalog", err: fatal}
	r := NewResolver([]provider.Provider{broken}, Options{Languages: []string{"en"}})

	_, err := r.Run(context.Background(), []string{dir})
	if !apperrors.IsFatal(err) {
		t.Fatalf("expected a fatal error, got %v", err)
	}
	if got := len(broken.requests()); got != 1 {
		t.Errorf("provider called %d times, want 1", got)
	}
}

func TestResolver_OtherProviderErrorsAreCounted(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "lost.s01e01.avi")

	flaky := &fakeProvider{name: "catalog", err: errors.New("unexpected payload")}
	r := NewResolver([]provider.Provider{flaky}, Options{Languages: []string{"en"}})

	report, err := r.Run(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(models.Report{Failed: 1}, report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_Paths(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		setup     func(t *testing.T, dir string) string
		recursive bool
		want      models.Report
	}{
		{
			name: "video file argument",
			setup: func(t *testing.T, dir string) string {
				touch(t, dir, "lost.s01e01.mkv", "lost.s01e02.mkv")
				return filepath.Join(dir, "lost.s01e01.mkv")
			},
			want: models.Report{NotFound: 1},
		},
		{
			name: "not a media file",
			setup: func(t *testing.T, dir string) string {
				touch(t, dir, "notes.txt")
				return filepath.Join(dir, "notes.txt")
			},
			want: models.Report{Failed: 1},
		},
		{
			name: "missing path",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "missing")
			},
			want: models.Report{Failed: 1},
		},
		{
			name: "directory without media",
			setup: func(t *testing.T, dir string) string {
				touch(t, dir, "readme.txt")
				return dir
			},
			want: models.Report{Failed: 1},
		},
		{
			name: "directory without media when recursive",
			setup: func(t *testing.T, dir string) string {
				touch(t, dir, "readme.txt")
				return dir
			},
			recursive: true,
		},
		{
			name: "unrecognized media name",
			setup: func(t *testing.T, dir string) string {
				touch(t, dir, "holiday.mp4")
				return dir
			},
			want: models.Report{Skipped: 1},
		},
		{
			name: "uppercase extension",
			setup: func(t *testing.T, dir string) string {
				touch(t, dir, "LOST.S01E01.AVI")
				return dir
			},
			want: models.Report{NotFound: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := tt.setup(t, t.TempDir())
			r := NewResolver([]provider.Provider{&fakeProvider{name: "catalog"}}, Options{
				Languages: []string{"en"},
				Recursive: tt.recursive,
			})
			report, err := r.Run(context.Background(), []string{path})
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, report); diff != "" {
				t.Errorf("report mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolver_Recursive(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	touch(t, root,
		"lost.s01e01.avi",
		"B/monk.s01e01.avi",
		"a/dexter.s01e01.avi",
		"a/nested/fringe.s01e01.avi",
	)

	hash := &fakePrefetcher{fakeProvider: &fakeProvider{name: "hash"}}
	r := NewResolver([]provider.Provider{hash}, Options{Languages: []string{"en"}, Recursive: true})

	report, err := r.Run(context.Background(), []string{root})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.NotFound != 4 {
		t.Errorf("NotFound = %d, want 4", report.NotFound)
	}

	var order []string
	for _, req := range hash.requests() {
		order = append(order, req.Name)
	}
	if diff := cmp.Diff([]string{"lost", "dexter", "monk", "fringe"}, order); diff != "" {
		t.Errorf("processing order mismatch (-want +got):\n%s", diff)
	}

	wantBatches := [][]string{
		{filepath.Join(root, "lost.s01e01.avi")},
		{filepath.Join(root, "a", "dexter.s01e01.avi"), filepath.Join(root, "B", "monk.s01e01.avi")},
		{filepath.Join(root, "a", "nested", "fringe.s01e01.avi")},
	}
	if diff := cmp.Diff(wantBatches, hash.batches); diff != "" {
		t.Errorf("prefetch batches mismatch (-want +got):\n%s", diff)
	}
}

func TestResolver_Prefetch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "lost.s01e01.avi")

	t.Run("warnings do not stop the run", func(t *testing.T) {
		hash := &fakePrefetcher{
			fakeProvider: &fakeProvider{name: "hash"},
			warnings:     []error{errors.New("file too small")},
		}
		r := NewResolver([]provider.Provider{hash}, Options{Languages: []string{"en"}})
		report, err := r.Run(context.Background(), []string{dir})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if report.NotFound != 1 {
			t.Errorf("NotFound = %d, want 1", report.NotFound)
		}
	})

	t.Run("fatal aborts before any lookup", func(t *testing.T) {
		hash := &fakePrefetcher{
			fakeProvider: &fakeProvider{name: "hash"},
			fatal:        apperrors.NewFatalError("hash", errors.New("503 Service Unavailable")),
		}
		r := NewResolver([]provider.Provider{hash}, Options{Languages: []string{"en"}})
		if _, err := r.Run(context.Background(), []string{dir}); !apperrors.IsFatal(err) {
			t.Fatalf("expected a fatal error, got %v", err)
		}
		if len(hash.requests()) != 0 {
			t.Errorf("no lookup expected after a fatal prefetch")
		}
	})
}

func TestResolver_Interrupted(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	touch(t, dir, "lost.s01e01.avi")

	catalog := &fakeProvider{name: "catalog", subtitles: map[models.SubtitleKey]string{
		key("lost", 1, 1, "en"): "text",
	}}
	r := NewResolver([]provider.Provider{catalog}, Options{Languages: []string{"en"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, []string{dir})
	if !errors.Is(err, apperrors.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the video file to remain, got %d entries", len(entries))
	}
}
