package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Name:      "reservations_created_total",
			Help:      "Reservations created, by service mode.",
		},
		[]string{"mode"},
	)

	capacityRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Name:      "capacity_rejections_total",
			Help:      "Dine-in requests rejected because all tables were taken.",
		},
	)

	otpVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Name:      "otp_verifications_total",
			Help:      "OTP verification attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Name:      "notifications_sent_total",
			Help:      "Outbound notifications, by channel and result.",
		},
		[]string{"channel", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationsCreated, capacityRejections, otpVerifications, notificationsSent)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncReservationCreated counts a successful booking by service mode.
func IncReservationCreated(mode string) {
	reservationsCreated.WithLabelValues(mode).Inc()
}

// IncCapacityRejection counts a full-house rejection.
func IncCapacityRejection() {
	capacityRejections.Inc()
}

// IncOTPVerification counts an OTP verification by outcome
// (ok, mismatch, expired, throttled, not_found).
func IncOTPVerification(outcome string) {
	otpVerifications.WithLabelValues(outcome).Inc()
}

// IncNotification counts a dispatch attempt per channel.
func IncNotification(channel string, ok bool) {
	result := "error"
	if ok {
		result = "ok"
	}
	notificationsSent.WithLabelValues(channel, result).Inc()
}
