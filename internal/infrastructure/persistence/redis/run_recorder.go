package redis

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// KeyLastRun is the hash holding the most recent successful run.
const KeyLastRun = "tutoring-report:last-run"

// DefaultRunTTL is how long a run summary is kept.
const DefaultRunTTL = 720 * time.Hour

// Hash fields of KeyLastRun.
const (
	fieldRunID         = "run_id"
	fieldStartedAt     = "started_at"
	fieldFinishedAt    = "finished_at"
	fieldOutput        = "output"
	fieldFormat        = "format"
	fieldTotalSessions = "total_sessions"
)

// ErrNoRun is returned by Last when no run has been recorded.
var ErrNoRun = stderrors.New("redis: no run recorded")

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RunSummary describes one successful report run.
type RunSummary struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Output        string
	Format        string
	TotalSessions int64
}

// RunRecorder stores run summaries.
type RunRecorder struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRunRecorder creates a RunRecorder. A non-positive ttl means DefaultRunTTL.
func NewRunRecorder(c *Client, ttl time.Duration) *RunRecorder {
	if ttl <= 0 {
		ttl = DefaultRunTTL
	}
	return &RunRecorder{rdb: c.rdb, ttl: ttl}
}

// Record replaces the last-run hash with s and refreshes its TTL atomically.
func (r *RunRecorder) Record(ctx context.Context, s RunSummary) error {
	if s.RunID == "" {
		s.RunID = NewRunID()
	}

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, KeyLastRun)
		pipe.HSet(ctx, KeyLastRun,
			fieldRunID, s.RunID,
			fieldStartedAt, s.StartedAt.UTC().Format(time.RFC3339Nano),
			fieldFinishedAt, s.FinishedAt.UTC().Format(time.RFC3339Nano),
			fieldOutput, s.Output,
			fieldFormat, s.Format,
			fieldTotalSessions, strconv.FormatInt(s.TotalSessions, 10),
		)
		pipe.Expire(ctx, KeyLastRun, r.ttl)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "record run %s", s.RunID)
	}
	return nil
}

// Last returns the most recently recorded run.
func (r *RunRecorder) Last(ctx context.Context) (RunSummary, error) {
	fields, err := r.rdb.HGetAll(ctx, KeyLastRun).Result()
	if err != nil {
		return RunSummary{}, errors.Wrap(err, "read last run")
	}
	if len(fields) == 0 {
		return RunSummary{}, ErrNoRun
	}

	s := RunSummary{
		RunID:  fields[fieldRunID],
		Output: fields[fieldOutput],
		Format: fields[fieldFormat],
	}
	if s.StartedAt, err = parseTime(fields[fieldStartedAt]); err != nil {
		return RunSummary{}, errors.Wrap(err, "parse started_at")
	}
	if s.FinishedAt, err = parseTime(fields[fieldFinishedAt]); err != nil {
		return RunSummary{}, errors.Wrap(err, "parse finished_at")
	}
	if v := fields[fieldTotalSessions]; v != "" {
		if s.TotalSessions, err = strconv.ParseInt(v, 10, 64); err != nil {
			return RunSummary{}, errors.Wrap(err, "parse total_sessions")
		}
	}
	return s, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}
