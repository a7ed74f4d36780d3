package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool keeps one limiter per client key.
type limiterPool struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

func newLimiterPool(requestsPerWindow, windowSeconds, burst int, idle time.Duration) *limiterPool {
	if requestsPerWindow <= 0 {
		return nil
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	if burst < requestsPerWindow {
		burst = requestsPerWindow
	}
	return &limiterPool{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requestsPerWindow) / float64(windowSeconds)),
		burst:    burst,
		idle:     idle,
	}
}

func (p *limiterPool) get(key string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, exists := p.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (p *limiterPool) sweep(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, v := range p.visitors {
		if now.Sub(v.lastSeen) > p.idle {
			delete(p.visitors, key)
		}
	}
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.visitors)
}

// RateLimitConfig sets the general and upload budgets. A non-positive request
// count disables that limiter.
type RateLimitConfig struct {
	Requests       int
	WindowSeconds  int
	Burst          int
	UploadRequests int
	UploadWindow   int
}

// RateLimitManager owns the per-IP limiters and prunes idle ones until its
// context is cancelled.
type RateLimitManager struct {
	general *limiterPool
	uploads *limiterPool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRateLimitManager(ctx context.Context, cfg RateLimitConfig) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		general: newLimiterPool(cfg.Requests, cfg.WindowSeconds, cfg.Burst, 3*time.Minute),
		uploads: newLimiterPool(cfg.UploadRequests, cfg.UploadWindow, 0, 10*time.Minute),
		ctx:     managerCtx,
		cancel:  cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// GetVisitor returns the general limiter for ip, or nil when disabled.
func (m *RateLimitManager) GetVisitor(ip string) *rate.Limiter {
	if m == nil || m.general == nil {
		return nil
	}
	return m.general.get(ip, time.Now())
}

// GetUploadLimiter returns the upload limiter for ip, or nil when disabled.
func (m *RateLimitManager) GetUploadLimiter(ip string) *rate.Limiter {
	if m == nil || m.uploads == nil {
		return nil
	}
	return m.uploads.get(ip, time.Now())
}

func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case now := <-ticker.C:
			m.cleanup(now)
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	for _, pool := range []*limiterPool{m.general, m.uploads} {
		if pool != nil {
			pool.sweep(now)
		}
	}
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
