package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campusdash/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// helper: wait with timeout for a signal
func waitCh[T any](t *testing.T, ch <-chan T, d time.Duration) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(d):
		t.Fatalf("timeout waiting for channel")
		return *new(T)
	}
}

// recordingSink keeps every write in order.
type recordingSink struct {
	mu     sync.Mutex
	writes [][]models.DataPoint
	notify chan []models.DataPoint
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan []models.DataPoint, 64)}
}

func (s *recordingSink) Replace(_ string, points []models.DataPoint, _ time.Time) {
	s.mu.Lock()
	s.writes = append(s.writes, points)
	s.mu.Unlock()
	select {
	case s.notify <- points:
	default:
	}
}

func (s *recordingSink) Writes() [][]models.DataPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]models.DataPoint(nil), s.writes...)
}

var (
	sampleA = RawSample{{Key: "2023-02-03T00:00:00", Count: 39}}
	sampleB = RawSample{{Key: "2023-02-04T00:00:00", Count: 16}}
)

func TestPoller_FetchesImmediatelyOnStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	sink := NewMockSink(ctrl)

	got := make(chan []models.DataPoint, 1)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(sampleA, nil).Times(1)
	sink.EXPECT().
		Replace("daily-active-students", gomock.Any(), gomock.Any()).
		Do(func(_ string, points []models.DataPoint, _ time.Time) { got <- points }).
		Times(1)

	p := NewPoller(fetcher, sink,
		WithPanelKey("daily-active-students"),
		WithInterval(time.Hour),
		WithLogger(zap.NewNop()),
	)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	points := waitCh(t, got, 300*time.Millisecond)
	assert.Equal(t, []models.DataPoint{{Label: "Feb 3", Value: 39}}, points)
}

func TestPoller_FetchesEveryInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(sampleA, nil).AnyTimes()

	sink := newRecordingSink()
	p := NewPoller(fetcher, sink, WithInterval(10*time.Millisecond))
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	for i := 0; i < 3; i++ {
		waitCh(t, sink.notify, 500*time.Millisecond)
	}
}

func TestPoller_StopHaltsFetchingAndWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	sink := NewMockSink(ctrl)

	var fetches atomic.Int32
	var stopped atomic.Bool
	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (RawSample, error) {
		fetches.Add(1)
		return sampleA, nil
	}).AnyTimes()
	wrote := make(chan struct{}, 64)
	sink.EXPECT().Replace(gomock.Any(), gomock.Any(), gomock.Any()).Do(func(string, []models.DataPoint, time.Time) {
		if stopped.Load() {
			t.Errorf("sink written after Stop returned")
		}
		select {
		case wrote <- struct{}{}:
		default:
		}
	}).AnyTimes()

	interval := 5 * time.Millisecond
	p := NewPoller(fetcher, sink, WithInterval(interval))
	require.NoError(t, p.Start(context.Background()))
	waitCh(t, wrote, 300*time.Millisecond)

	p.Stop()
	stopped.Store(true)
	after := fetches.Load()

	time.Sleep(10 * interval)
	assert.Equal(t, after, fetches.Load(), "no fetch may be issued after Stop")

	p.Stop()
}

func TestPoller_StopCancelsInFlightFetch(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	sink := NewMockSink(ctrl)

	inFlight := make(chan struct{})
	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) (RawSample, error) {
		close(inFlight)
		<-ctx.Done()
		return sampleA, nil
	}).Times(1)
	sink.EXPECT().Replace(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	p := NewPoller(fetcher, sink, WithInterval(time.Hour))
	require.NoError(t, p.Start(context.Background()))
	waitCh(t, inFlight, 300*time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	waitCh(t, done, 300*time.Millisecond)
}

func TestPoller_FailureLeavesSeriesUnchanged(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	sink := NewMockSink(ctrl)

	failures := []error{
		newStatusError("http://upstream", 503),
		errors.New("connection refused"),
		nil, // bad timestamp below
	}
	var calls atomic.Int32
	failed := make(chan struct{}, 64)
	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (RawSample, error) {
		n := int(calls.Add(1))
		if n == 1 {
			return sampleA, nil
		}
		defer func() {
			select {
			case failed <- struct{}{}:
			default:
			}
		}()
		if err := failures[(n-2)%len(failures)]; err != nil {
			return nil, err
		}
		return RawSample{{Key: "not-a-date", Count: 1}}, nil
	}).AnyTimes()

	first := make(chan struct{}, 1)
	sink.EXPECT().Replace(gomock.Any(), gomock.Any(), gomock.Any()).Do(func(string, []models.DataPoint, time.Time) {
		first <- struct{}{}
	}).Times(1)

	p := NewPoller(fetcher, sink, WithInterval(5*time.Millisecond))
	require.NoError(t, p.Start(context.Background()))
	waitCh(t, first, 300*time.Millisecond)
	for i := 0; i < len(failures); i++ {
		waitCh(t, failed, 300*time.Millisecond)
	}
	p.Stop()
}

func TestPoller_LastResolvedWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)

	release := make(chan struct{})
	var calls atomic.Int32
	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(ctx context.Context) (RawSample, error) {
		switch calls.Add(1) {
		case 1:
			// issued first, resolves last
			<-release
			return sampleA, nil
		case 2:
			return sampleB, nil
		default:
			<-ctx.Done()
			return nil, ctx.Err()
		}
	}).AnyTimes()

	sink := newRecordingSink()
	p := NewPoller(fetcher, sink, WithInterval(20*time.Millisecond))
	require.NoError(t, p.Start(context.Background()))

	second := waitCh(t, sink.notify, 500*time.Millisecond)
	assert.Equal(t, "Feb 4", second[0].Label)

	close(release)
	first := waitCh(t, sink.notify, 500*time.Millisecond)
	assert.Equal(t, "Feb 3", first[0].Label)

	p.Stop()
	writes := sink.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "Feb 3", writes[len(writes)-1][0].Label)
}

func TestPoller_StartTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any()).Return(sampleA, nil).AnyTimes()

	p := NewPoller(fetcher, newRecordingSink(), WithInterval(time.Hour))
	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrAlreadyStarted)

	p.Stop()
	assert.ErrorIs(t, p.Start(context.Background()), ErrPollerStopped)
}

func TestPoller_StopBeforeStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := NewPoller(NewMockFetcher(ctrl), NewMockSink(ctrl))

	p.Stop()
	p.Stop()
	assert.ErrorIs(t, p.Start(context.Background()), ErrPollerStopped)
}

func TestPoller_ParentContextEndsPolling(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := NewMockFetcher(ctrl)
	var fetches atomic.Int32
	fetcher.EXPECT().Fetch(gomock.Any()).DoAndReturn(func(context.Context) (RawSample, error) {
		fetches.Add(1)
		return sampleA, nil
	}).AnyTimes()

	sink := newRecordingSink()
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(fetcher, sink, WithInterval(5*time.Millisecond))
	require.NoError(t, p.Start(ctx))
	waitCh(t, sink.notify, 300*time.Millisecond)

	cancel()
	p.Stop()
	after := fetches.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, fetches.Load())
}
