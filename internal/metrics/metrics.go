package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Subtitle resolution metrics
var (
	// SubtitleDownloadsTotal counts provider lookups by provider and outcome
	// ("success", "not_found", "error").
	SubtitleDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "episodesubs",
			Name:      "subtitle_downloads_total",
			Help:      "Total number of subtitle lookups per provider and outcome.",
		},
		[]string{"provider", "status"},
	)

	// FetchAttemptsTotal counts raw HTTP fetch attempts ("success", "retry", "error").
	FetchAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "episodesubs",
			Name:      "fetch_attempts_total",
			Help:      "Total number of HTTP fetch attempts.",
		},
		[]string{"outcome"},
	)

	// RemoteCallsTotal counts XML-RPC calls by method and outcome.
	RemoteCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "episodesubs",
			Name:      "remote_calls_total",
			Help:      "Total number of XML-RPC calls.",
		},
		[]string{"method", "status"},
	)

	// MediaFilesTotal counts per-language resolution results
	// ("downloaded", "satisfied", "not_found").
	MediaFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "episodesubs",
			Name:      "media_files_total",
			Help:      "Total number of media file and language pairs resolved.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		SubtitleDownloadsTotal,
		FetchAttemptsTotal,
		RemoteCallsTotal,
		MediaFilesTotal,
	)
}
