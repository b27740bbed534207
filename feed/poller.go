package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"campusdash/metrics"
	"campusdash/models"
	"go.uber.org/zap"
)

const DefaultInterval = 60 * time.Second

// Poller keeps the series of one panel fresh. It fetches once on Start and then once per interval until Stop.
// Fetches are not serialised, a slow fetch can still be in flight when the next tick fires. Results are written in
// the order fetches complete, so the last one to resolve wins.
type Poller struct {
	fetcher  Fetcher
	sink     Sink
	panelKey string
	interval time.Duration
	values   models.ValueSource
	loc      *time.Location
	log      *zap.Logger

	mu       sync.Mutex
	started  bool
	stopped  bool
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup

	// writeMu orders sink writes and makes the cancelled check atomic with the write.
	writeMu sync.Mutex
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithPanelKey(key string) Option {
	return func(p *Poller) { p.panelKey = key }
}

func WithValueSource(v models.ValueSource) Option {
	return func(p *Poller) {
		if v != "" {
			p.values = v
		}
	}
}

func WithLocation(loc *time.Location) Option {
	return func(p *Poller) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

func NewPoller(fetcher Fetcher, sink Sink, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		sink:     sink,
		interval: DefaultInterval,
		values:   models.ValuesFromPayload,
		loc:      time.UTC,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(zap.String("panel", p.panelKey))
	return p
}

// Start begins polling. The poll loop lives until Stop is called or ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPollerStopped
	}
	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	if p.values == models.ValuesFromFixture {
		p.log.Warn("panel values come from the built-in fixture table, fetched counts are ignored")
	}

	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.run(pollCtx)

	p.log.Info("poller started", zap.Duration("interval", p.interval))
	return nil
}

// Stop cancels the ticker and any in-flight fetch and waits for them to return. Once Stop returns the sink will not
// be written to again. It is safe to call more than once, and before Start.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		cancel := p.cancel
		p.mu.Unlock()

		if cancel != nil {
			p.writeMu.Lock()
			cancel()
			p.writeMu.Unlock()
		}
		p.wg.Wait()
		p.log.Info("poller stopped")
	})
}

func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.launch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.launch(ctx)
		}
	}
}

func (p *Poller) launch(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poll(ctx)
	}()
}

func (p *Poller) poll(ctx context.Context) {
	start := time.Now()

	raw, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.fail(err, start)
		return
	}

	points, err := Transform(raw, p.values, p.loc)
	if err != nil {
		p.fail(err, start)
		return
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	p.sink.Replace(p.panelKey, points, time.Now())

	metrics.RecordFetch(p.panelKey, metrics.OutcomeSuccess, time.Since(start).Seconds())
	metrics.SetSeriesPoints(p.panelKey, len(points))
	p.log.Debug("series replaced", zap.Int("points", len(points)), zap.Duration("took", time.Since(start)))
}

// fail records a failed fetch. The current series is left as it is, the next tick is the retry.
func (p *Poller) fail(err error, start time.Time) {
	took := time.Since(start)
	switch {
	case errors.Is(err, ErrUnexpectedStatus):
		metrics.RecordFetch(p.panelKey, metrics.OutcomeStatus, took.Seconds())
		p.log.Debug("fetch skipped", zap.Error(err))
	case errors.Is(err, ErrMalformedPayload):
		metrics.RecordFetch(p.panelKey, metrics.OutcomeMalformed, took.Seconds())
		p.log.Warn("fetch returned malformed payload", zap.Error(err))
	default:
		metrics.RecordFetch(p.panelKey, metrics.OutcomeTransport, took.Seconds())
		p.log.Warn("fetch failed", zap.Error(err))
	}
}
