package receiving

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "preentrada",
		Name:      "remote_requests_total",
		Help:      "Запросы к сервису пре-энтрад по операции и исходу.",
	}, []string{"op", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "preentrada",
		Name:      "remote_request_duration_seconds",
		Help:      "Длительность запросов к сервису пре-энтрад.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	}, []string{"op"})

	inflightOps = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "preentrada",
		Name:      "operations_in_flight",
		Help:      "Операции синхронизатора, выполняющиеся сейчас.",
	}, []string{"op"})
)

func observe(op Op, started time.Time, err error) {
	outcome := "ok"
	if re, ok := err.(*RemoteError); ok && re != nil {
		outcome = re.Kind.String()
	} else if err != nil {
		outcome = "error"
	}
	requestsTotal.WithLabelValues(string(op), outcome).Inc()
	requestDuration.WithLabelValues(string(op)).Observe(time.Since(started).Seconds())
}
