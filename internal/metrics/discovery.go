package metrics

import "github.com/prometheus/client_golang/prometheus"

// Discovery Prometheus metrics.
var (
	ClassifierRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "classifier_requests_total",
			Help:      "Total number of classifier requests",
		},
		[]string{"model", "status"},
	)

	ClassifierRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "discovery",
			Name:      "classifier_request_duration_seconds",
			Help:      "Classifier request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	DescriberRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "describer_requests_total",
			Help:      "Total number of description generation requests",
		},
		[]string{"model", "status"},
	)

	DescriberRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "discovery",
			Name:      "describer_request_duration_seconds",
			Help:      "Description generation request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	CategoryResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "category_resolutions_total",
			Help:      "Interest text resolutions by method",
		},
		[]string{"method"}, // "classifier" / "keyword_fallback" / "none"
	)

	ResultPublicationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "result_publications_total",
			Help:      "Result envelope publications by outcome",
		},
		[]string{"outcome"}, // "success" / "error"
	)

	DescriptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "descriptions_total",
			Help:      "Item description generations by source",
		},
		[]string{"source"}, // "model" / "fallback"
	)
)

var discoveryMetricsRegistered bool

// RegisterDiscoveryMetrics registers Prometheus discovery metrics. Must be called once from main.
func RegisterDiscoveryMetrics() {
	if discoveryMetricsRegistered {
		return
	}
	prometheus.MustRegister(ClassifierRequestsTotal)
	prometheus.MustRegister(ClassifierRequestDuration)
	prometheus.MustRegister(DescriberRequestsTotal)
	prometheus.MustRegister(DescriberRequestDuration)
	prometheus.MustRegister(CategoryResolutionsTotal)
	prometheus.MustRegister(ResultPublicationsTotal)
	prometheus.MustRegister(DescriptionsTotal)
	discoveryMetricsRegistered = true
}
