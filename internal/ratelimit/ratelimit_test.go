package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/gemini-go/internal/clock"
)

func envLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestIntervalFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want time.Duration
	}{
		{"no ci", map[string]string{}, DefaultInterval},
		{"ci true", map[string]string{"CI": "true"}, CIInterval},
		{"github actions", map[string]string{"GITHUB_ACTIONS": "true"}, CIInterval},
		{"ci false", map[string]string{"CI": "false"}, DefaultInterval},
		{"ci other value", map[string]string{"CI": "1"}, DefaultInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalFromEnv(envLookup(tt.env)); got != tt.want {
				t.Errorf("IntervalFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}

	if got := IntervalFromEnv(nil); got != DefaultInterval {
		t.Errorf("IntervalFromEnv(nil) = %v, want %v", got, DefaultInterval)
	}
}

func TestPacer_ConsecutiveCalls(t *testing.T) {
	for _, interval := range []time.Duration{DefaultInterval, CIInterval} {
		t.Run(interval.String(), func(t *testing.T) {
			fake := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
			p := New(Config{MinInterval: interval, Clock: fake})

			ctx := context.Background()
			first, err := p.Wait(ctx)
			if err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			if first != 0 {
				t.Errorf("first Wait() = %v, want 0", first)
			}
			dispatch1 := fake.Now()

			if _, err := p.Wait(ctx); err != nil {
				t.Fatalf("Wait() error = %v", err)
			}
			dispatch2 := fake.Now()

			if gap := dispatch2.Sub(dispatch1); gap < interval {
				t.Errorf("gap between dispatches = %v, want >= %v", gap, interval)
			}
		})
	}
}

func TestPacer_NoWaitAfterInterval(t *testing.T) {
	fake := clock.NewFake(time.Now())
	p := New(Config{MinInterval: time.Second, Clock: fake})

	p.Wait(context.Background())
	fake.Advance(2 * time.Second)

	waited, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if waited != 0 {
		t.Errorf("Wait() = %v, want 0 after interval elapsed", waited)
	}
}

func TestPacer_PartialDeficit(t *testing.T) {
	fake := clock.NewFake(time.Now())
	p := New(Config{MinInterval: time.Second, Clock: fake})

	p.Wait(context.Background())
	fake.Advance(300 * time.Millisecond)

	waited, _ := p.Wait(context.Background())
	if diff := waited - 700*time.Millisecond; diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("Wait() = %v, want ~700ms", waited)
	}
}

func TestPacer_Disabled(t *testing.T) {
	fake := clock.NewFake(time.Now())
	p := New(Config{MinInterval: 0, Clock: fake})

	for i := 0; i < 5; i++ {
		if waited, _ := p.Wait(context.Background()); waited != 0 {
			t.Errorf("Wait() #%d = %v, want 0", i, waited)
		}
	}
	if len(fake.Sleeps()) != 0 {
		t.Errorf("Sleeps() = %v, want none", fake.Sleeps())
	}
}

func TestPacer_Cancelled(t *testing.T) {
	fake := clock.NewFake(time.Now())
	p := New(Config{MinInterval: time.Second, Clock: fake})

	p.Wait(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

// frozenClock стоит на месте, Sleep ничего не делает. Момент отправки
// вызова = время резервации + вернувшаяся задержка.
type frozenClock struct {
	mu  sync.Mutex
	now time.Time

	// первый Now() блокируется, пока не закроют release
	gated   bool
	entered chan struct{}
	release chan struct{}
}

func (c *frozenClock) Now() time.Time {
	c.mu.Lock()
	now := c.now
	gate := c.gated
	c.gated = false
	c.mu.Unlock()

	if gate {
		close(c.entered)
		<-c.release
	}
	return now
}

func (c *frozenClock) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func (c *frozenClock) set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// rate считает задержки во float64, отсюда допуск в наносекунды
const gapTolerance = time.Microsecond

func checkGaps(t *testing.T, dispatches []time.Time, interval time.Duration) {
	t.Helper()

	sort.Slice(dispatches, func(i, j int) bool { return dispatches[i].Before(dispatches[j]) })
	for i := 1; i < len(dispatches); i++ {
		if gap := dispatches[i].Sub(dispatches[i-1]); gap < interval-gapTolerance {
			t.Errorf("gap between dispatch %d and %d = %v, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestPacer_Concurrent(t *testing.T) {
	const (
		callers  = 5
		interval = 20 * time.Millisecond
	)

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cl := &frozenClock{now: t0}
	p := New(Config{MinInterval: interval, Clock: cl})

	var (
		mu         sync.Mutex
		dispatches []time.Time
	)

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			waited, err := p.Wait(context.Background())
			if err != nil {
				return err
			}
			mu.Lock()
			dispatches = append(dispatches, t0.Add(waited))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if len(dispatches) != callers {
		t.Fatalf("dispatches = %d, want %d", len(dispatches), callers)
	}
	checkGaps(t, dispatches, interval)
}

func TestPacer_ConcurrentRealClock(t *testing.T) {
	p := New(Config{MinInterval: 20 * time.Millisecond})

	const callers = 5
	start := time.Now()

	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := p.Wait(context.Background())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// первый проходит сразу, остальные 4 встают в очередь по 20ms
	if elapsed := time.Since(start); elapsed < 4*20*time.Millisecond-5*time.Millisecond {
		t.Errorf("elapsed = %v, want >= ~80ms", elapsed)
	}
}

// Вызов, который прочитал время первым, но завис до резервации,
// не должен получить слот раньше чем через интервал после обогнавшего его вызова.
func TestPacer_ReadAndReserveAreAtomic(t *testing.T) {
	const interval = 20 * time.Millisecond

	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cl := &frozenClock{
		now:     t0,
		gated:   true,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p := New(Config{MinInterval: interval, Clock: cl})

	type result struct {
		waited time.Duration
		err    error
	}

	first := make(chan result, 1)
	go func() {
		waited, err := p.Wait(context.Background())
		first <- result{waited, err}
	}()
	<-cl.entered

	cl.set(t0.Add(5 * time.Millisecond))

	second := make(chan result, 1)
	go func() {
		waited, err := p.Wait(context.Background())
		second <- result{waited, err}
	}()

	// даём второму вызову шанс обогнать первый
	select {
	case r := <-second:
		second <- r
	case <-time.After(50 * time.Millisecond):
	}
	close(cl.release)

	r1, r2 := <-first, <-second
	if r1.err != nil || r2.err != nil {
		t.Fatalf("Wait() errors = %v, %v", r1.err, r2.err)
	}

	checkGaps(t, []time.Time{
		t0.Add(r1.waited),
		t0.Add(5*time.Millisecond + r2.waited),
	}, interval)
}
