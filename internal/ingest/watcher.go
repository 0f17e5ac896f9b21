package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WatchOptions controls how the Watcher polls a Drive folder.
type WatchOptions struct {
	FolderID string
	StoreID  uuid.UUID
	VATRate  *float64
	Interval time.Duration // default 5m
}

// Watcher periodically polls a Drive folder for new supplier GRN feed
// files and ingests any it hasn't seen yet, grounded on the teacher's
// watcher.go#DownloadFolderCSV polling loop (generalized from "download
// CSVs to disk for a later batch job" to "ingest each new file as it
// appears").
type Watcher struct {
	pipeline *Pipeline
	service  *Service
	log      zerolog.Logger
	seen     map[string]struct{}
}

// NewWatcher builds a Watcher over pipeline and service.
func NewWatcher(service *Service, pipeline *Pipeline, log zerolog.Logger) *Watcher {
	return &Watcher{pipeline: pipeline, service: service, log: log, seen: make(map[string]struct{})}
}

// Run polls opts.FolderID every opts.Interval until ctx is cancelled,
// ingesting each file it hasn't already processed. Errors ingesting an
// individual file are logged and skipped rather than stopping the loop.
func (w *Watcher) Run(ctx context.Context, opts WatchOptions) {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.pollOnce(ctx, opts)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce(ctx, opts)
		}
	}
}

func (w *Watcher) pollOnce(ctx context.Context, opts WatchOptions) {
	files, err := w.service.ListFiles(opts.FolderID)
	if err != nil {
		w.log.Error().Err(err).Msg("listing drive folder for GRN feed watch")
		return
	}

	for _, f := range files {
		if _, ok := w.seen[f.ID]; ok {
			continue
		}

		if _, err := w.pipeline.IngestFile(ctx, f.ID, opts.StoreID, opts.VATRate); err != nil {
			w.log.Error().Err(err).Str("file", f.Name).Msg("ingesting GRN feed file")
			continue
		}

		w.seen[f.ID] = struct{}{}
		w.log.Info().Str("file", f.Name).Msg("ingested GRN feed file")
	}
}
