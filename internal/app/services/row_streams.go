package services

import (
	"context"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/logger"
	"github.com/klassenhub/klassenhub/internal/pkg/realtime"
	"github.com/klassenhub/klassenhub/internal/pkg/rowcache"
	"github.com/klassenhub/klassenhub/internal/pkg/syncstore"
)

// WatchableTables are the tables clients may subscribe to on the change
// stream. Must match the tables carrying the notify trigger.
var WatchableTables = []string{"pupils", "exams", "corrections", "reports"}

// rowStreams turns change subscriptions into row streams. Each stream is
// backed by a synced list store whose watcher re-fetches every changed row
// from the database, so emitted rows are always current, and mirrors them
// into the row cache.
type rowStreams struct {
	repos *repositories.Repositories
	cache *rowcache.Cache
}

// NewRowStreams creates a streamer over the repositories and row cache.
func NewRowStreams(repos *repositories.Repositories, cache *rowcache.Cache) realtime.RowStreamer {
	return &rowStreams{repos: repos, cache: cache}
}

// StreamRows consumes the subscription for one table scoped to one teacher,
// calling emit per event until the subscription closes.
func (r *rowStreams) StreamRows(ctx context.Context, table string, teacherID int64, sub *realtime.Subscription, emit func(op string, id int64, row any)) {
	switch table {
	case "pupils":
		streamTable(ctx, table, sub, r.cache, emit, func(ctx context.Context, id int64) (models.Pupil, error) {
			pupil, err := r.repos.PupilRepository.GetPupilByID(ctx, teacherID, id)
			if err != nil {
				return models.Pupil{}, err
			}
			return *pupil, nil
		})
	case "exams":
		streamTable(ctx, table, sub, r.cache, emit, func(ctx context.Context, id int64) (models.Exam, error) {
			exam, err := r.repos.ExamRepository.GetExamByID(ctx, teacherID, id)
			if err != nil {
				return models.Exam{}, err
			}
			return *exam, nil
		})
	case "corrections":
		streamTable(ctx, table, sub, r.cache, emit, func(ctx context.Context, id int64) (models.Correction, error) {
			correction, err := r.repos.CorrectionRepository.GetCorrectionByID(ctx, teacherID, id)
			if err != nil {
				return models.Correction{}, err
			}
			return *correction, nil
		})
	case "reports":
		streamTable(ctx, table, sub, r.cache, emit, func(ctx context.Context, id int64) (models.Report, error) {
			report, err := r.repos.ReportRepository.GetReportByID(ctx, teacherID, id)
			if err != nil {
				return models.Report{}, err
			}
			return *report, nil
		})
	default:
		logger.Warn().Str("table", table).Msg("Stream requested for unknown table")
		sub.Close()
	}
}

// streamTable runs one watcher-backed stream: the watcher keeps a per-stream
// list store in sync, writes fetched rows through to the cache and hands
// each applied event to emit.
func streamTable[T syncstore.Entity](ctx context.Context, table string, sub *realtime.Subscription, cache syncstore.RowCache, emit func(op string, id int64, row any), fetch syncstore.FetchFunc[T]) {
	store := syncstore.NewListStore[T]()
	watcher := syncstore.NewWatcher(table, store, fetch, cache)
	watcher.OnEvent(emit)
	watcher.Run(ctx, sub)
}
