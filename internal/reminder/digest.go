package reminder

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gmsas95/arogya-cli/internal/dates"
	"github.com/gmsas95/arogya-cli/internal/metrics"
	"github.com/gmsas95/arogya-cli/internal/notify"
	"github.com/gmsas95/arogya-cli/internal/store"
	"github.com/gmsas95/arogya-cli/internal/vaccine"
	"go.uber.org/zap"
)

const (
	DigestKey  = "vaccine_digest"
	digestMark = "digest:last"
)

// NoticeSource yields the classified upcoming doses.
type NoticeSource interface {
	Notices(ctx context.Context) ([]vaccine.Notice, error)
}

// Markers is the KV subset used to remember the last digest day.
type Markers interface {
	GetKV(key string) ([]byte, error)
	SetKV(key string, value []byte) error
}

// Digest sends the upcoming-dose summary at most once per day.
type Digest struct {
	source   NoticeSource
	notifier notify.Notifier
	marks    Markers
	clock    dates.Clock
	loc      *time.Location
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewDigest(source NoticeSource, n notify.Notifier, marks Markers, opts Options, m *metrics.Metrics, logger *zap.Logger) *Digest {
	if opts.Clock == nil {
		opts.Clock = dates.SystemClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if m == nil {
		m = metrics.Default()
	}
	return &Digest{
		source:   source,
		notifier: n,
		marks:    marks,
		clock:    opts.Clock,
		loc:      opts.Location,
		metrics:  m,
		logger:   logger,
	}
}

// Run is the scheduled entry point.
func (d *Digest) Run(ctx context.Context) error {
	_, err := d.Send(ctx, false)
	return err
}

// Send delivers the digest. Unless force is set it skips a day already sent and
// a day with nothing due.
func (d *Digest) Send(ctx context.Context, force bool) (bool, error) {
	today := dates.Today(d.clock, d.loc).String()
	if !force {
		last, err := d.marks.GetKV(digestMark)
		if err != nil && !stderrors.Is(err, store.ErrKeyNotFound) {
			return false, err
		}
		if string(last) == today {
			return false, nil
		}
	}

	notices, err := d.source.Notices(ctx)
	if err != nil {
		return false, err
	}
	d.metrics.SetUpcomingDoses(len(notices))
	if len(notices) == 0 && !force {
		return false, nil
	}

	// the summary carries its own heading
	msg := notify.Message{Key: DigestKey, Body: vaccine.Summary(notices)}
	if err := d.notifier.Notify(ctx, msg); err != nil {
		return false, err
	}
	if err := d.marks.SetKV(digestMark, []byte(today)); err != nil {
		d.logger.Error("Failed to store digest marker", zap.Error(err))
	}
	d.logger.Info("Vaccine digest sent", zap.Int("doses", len(notices)))
	return true, nil
}
