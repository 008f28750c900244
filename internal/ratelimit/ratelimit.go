package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kitbuilder587/gemini-go/internal/clock"
)

const (
	DefaultInterval = 1 * time.Second
	CIInterval      = 3 * time.Second
)

// Pacer - гейт минимального интервала между запросами одного клиента.
// Под капотом rate.Limiter с burst=1: каждый следующий запрос встаёт
// не раньше чем через MinInterval после предыдущего.
type Pacer struct {
	// Now() и ReserveN выполняются под одним локом
	mu       sync.Mutex
	limiter  *rate.Limiter
	interval time.Duration
	clock    clock.Clock
}

type Config struct {
	MinInterval time.Duration
	Clock       clock.Clock
}

func New(cfg Config) *Pacer {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}

	return &Pacer{
		limiter:  rate.NewLimiter(limit, 1),
		interval: cfg.MinInterval,
		clock:    cfg.Clock,
	}
}

// IntervalFromEnv - в CI интервал больше, чтобы не упираться в квоту
func IntervalFromEnv(lookup func(string) (string, bool)) time.Duration {
	if lookup == nil {
		return DefaultInterval
	}
	for _, key := range []string{"CI", "GITHUB_ACTIONS"} {
		if v, ok := lookup(key); ok && v == "true" {
			return CIInterval
		}
	}
	return DefaultInterval
}

func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Wait резервирует слот и спит недостающее время. Возвращает сколько пришлось ждать.
// Слот резервируется атомарно, поэтому конкурентные вызовы выстраиваются в очередь.
func (p *Pacer) Wait(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	now := p.clock.Now()
	r := p.limiter.ReserveN(now, 1)
	p.mu.Unlock()

	if !r.OK() {
		// burst=1, n=1 - сюда попасть нельзя
		return 0, nil
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return 0, nil
	}

	if err := p.clock.Sleep(ctx, delay); err != nil {
		p.mu.Lock()
		r.CancelAt(p.clock.Now())
		p.mu.Unlock()
		return 0, err
	}
	return delay, nil
}
