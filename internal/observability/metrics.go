package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const DefaultScrapeInterval = 15 * time.Second

type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	apiReqTotal  *Counter
	apiReqError  *Counter
	uploads      *CounterVec
	uploadBytes  *HistogramVec
	reminderRuns *CounterVec
	remindersOut *Counter
	sseClients   *Gauge
	dbStats      *GaugeVec
	redisUp      *Gauge
	redisPing    *Gauge

	scrapeInterval time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics registry. Returns nil when disabled;
// every Metrics method is a no-op on a nil receiver.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() { instance = New() })
	return instance
}

func Current() *Metrics {
	return instance
}

func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sk_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sk_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("sk_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("sk_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("sk_api_requests_error_total", "API requests answered with a 5xx status."),
		uploads:     NewCounterVec("sk_image_uploads_total", "Image uploads by category/status.", []string{"category", "status"}),
		uploadBytes: NewHistogramVec(
			"sk_image_upload_bytes",
			"Accepted image upload sizes in bytes by category.",
			[]string{"category"},
			[]float64{16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20},
		),
		reminderRuns: NewCounterVec("sk_reminder_passes_total", "Reminder worker passes by status.", []string{"status"}),
		remindersOut: NewCounter("sk_reminders_fired_total", "Item reminders marked sent and notified."),
		sseClients:   NewGauge("sk_sse_clients", "Connected realtime stream clients."),
		dbStats:      NewGaugeVec("sk_db_pool", "Database connection pool stats.", []string{"stat"}),
		redisUp:      NewGauge("sk_redis_up", "1 when the last redis ping succeeded."),
		redisPing:    NewGauge("sk_redis_ping_seconds", "Latency of the last redis ping."),

		scrapeInterval: DefaultScrapeInterval,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, inst := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.uploads, m.uploadBytes,
		m.reminderRuns, m.remindersOut,
		m.sseClients,
		m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := inst.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveImageUpload records one upload attempt. size is only recorded for
// accepted uploads.
func (m *Metrics) ObserveImageUpload(category, status string, size int64) {
	if m == nil {
		return
	}
	m.uploads.Inc(category, status)
	if status == "ok" && size > 0 {
		m.uploadBytes.Observe(float64(size), category)
	}
}

func (m *Metrics) ObserveReminderPass(fired int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reminderRuns.Inc("error")
	} else {
		m.reminderRuns.Inc("ok")
	}
	if fired > 0 {
		m.remindersOut.Add(float64(fired))
	}
}

func (m *Metrics) SSEClientConnected() {
	if m == nil {
		return
	}
	m.sseClients.Inc()
}

func (m *Metrics) SSEClientDisconnected() {
	if m == nil {
		return
	}
	m.sseClients.Dec()
}

// StartDBCollector samples the sql.DB pool behind gorm until ctx ends.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sampleDB(log, db)
			}
		}
	}()
}

func (m *Metrics) sampleDB(log *logger.Logger, db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	stats := sqlDB.Stats()
	m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
	m.dbStats.Set(float64(stats.InUse), "in_use")
	m.dbStats.Set(float64(stats.Idle), "idle")
	m.dbStats.Set(float64(stats.WaitCount), "wait_count")
	m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
}

// StartRedisCollector pings the realtime bus redis until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	return len(status) == 3 && status[0] == '5'
}
