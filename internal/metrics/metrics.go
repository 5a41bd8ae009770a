package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"proprompt-mcp/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 调用结果标签
const (
	StatusSuccess  = "success"
	StatusAuth     = "auth_error"
	StatusError    = "error"
	StatusMalform  = "malformed"
	StatusReauthed = "reauthorized"
)

var (
	genAIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proprompt_genai_requests_total",
			Help: "Total number of requests sent to the Gemini API.",
		},
		[]string{"model", "operation", "status"},
	)
	genAIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proprompt_genai_request_duration_seconds",
			Help:    "Histogram of Gemini API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model", "operation"},
	)
	tasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proprompt_tasks_total",
			Help: "Total number of user-triggered generation tasks by outcome.",
		},
		[]string{"status"},
	)
	historyEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proprompt_history_entries",
			Help: "Number of entries currently held in the generation history.",
		},
	)
)

// ObserveGenAI 记录一次 Gemini 调用
func ObserveGenAI(model, operation, status string, elapsed time.Duration) {
	genAIRequestsTotal.WithLabelValues(model, operation, status).Inc()
	genAIRequestDuration.WithLabelValues(model, operation).Observe(elapsed.Seconds())
}

// ObserveTask 记录一次任务结果
func ObserveTask(status string) {
	tasksTotal.WithLabelValues(status).Inc()
}

// SetHistorySize 更新历史记录条数
func SetHistorySize(n int) {
	historyEntries.Set(float64(n))
}

// Serve 在 addr 上暴露 /metrics，ctx 结束时关闭
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	common.WithField("addr", addr).Info("Metrics endpoint listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
