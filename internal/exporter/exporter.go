package exporter

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"btctracker/internal/quote"
	"btctracker/internal/tracker"
)

// QuoteSource is the slice of tracker.Tracker the exporter needs.
type QuoteSource interface {
	Snapshot(ctx context.Context, mode tracker.Mode) (tracker.Snapshot, error)
	Source() string
}

// Exporter serves the JSON quote API plus Prometheus metrics:
// /api/quote, /healthz and /metrics.
type Exporter struct {
	Tracker QuoteSource

	mux    *http.ServeMux
	server *http.Server

	priceGauge    prometheus.Gauge
	changeGauge   prometheus.Gauge
	volumeGauge   prometheus.Gauge
	lastSuccessTS prometheus.Gauge
	fetchTotal    *prometheus.CounterVec
}

func New(addr string, src QuoteSource) *Exporter {
	mux := http.NewServeMux()
	e := &Exporter{
		Tracker: src,
		mux:     mux,
	}

	e.priceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "btc",
		Name:      "price_usd",
		Help:      "Current price of 1 BTC in USD",
	})
	e.changeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "btc",
		Name:      "change_24h_percent",
		Help:      "24h price change in percent",
	})
	e.volumeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "btc",
		Name:      "volume_24h_usd",
		Help:      "24h trading volume in USD",
	})
	e.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "btctracker",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful quote fetch",
	})
	e.fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "btctracker",
		Name:      "fetch_total",
		Help:      "Number of quote fetches by status",
	}, []string{"status"})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		e.priceGauge, e.changeGauge, e.volumeGauge,
		e.lastSuccessTS, e.fetchTotal,
	)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/api/quote", withJSONHeaders(recoverPanic(http.HandlerFunc(e.handleQuote))))

	e.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return e
}

func (e *Exporter) Serve() error                       { return e.server.ListenAndServe() }
func (e *Exporter) Shutdown(ctx context.Context) error { return e.server.Shutdown(ctx) }

// Collect refreshes the metrics from the cached-path quote. Called by the
// periodic loop in serve mode.
func (e *Exporter) Collect(ctx context.Context) error {
	snap, err := e.Tracker.Snapshot(ctx, tracker.ModeCached)
	e.observe(snap, err)
	return err
}

func (e *Exporter) observe(snap tracker.Snapshot, err error) {
	if err != nil {
		e.fetchTotal.WithLabelValues("error").Inc()
		return
	}
	e.fetchTotal.WithLabelValues("ok").Inc()
	e.priceGauge.Set(snap.Quote.PriceUSD)
	e.changeGauge.Set(snap.Quote.Change24hPercent)
	e.volumeGauge.Set(snap.Quote.Volume24hUSD)
	e.lastSuccessTS.Set(float64(time.Now().Unix()))
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Kind    quote.ErrorKind `json:"kind"`
	Message string          `json:"message"`
}

func (e *Exporter) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	mode := tracker.ModeCached
	if r.URL.Query().Get("mode") == "retry" {
		mode = tracker.ModeForceRetry
	}

	snap, err := e.Tracker.Snapshot(r.Context(), mode)
	e.observe(snap, err)
	if err != nil {
		kind, _ := quote.KindOf(err)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Kind: kind, Message: err.Error()}})
		return
	}

	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(snap)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
