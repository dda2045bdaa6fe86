package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(commandValidationsTotal, commandRedemptionsTotal, commandRedemptionDuration)
}

var (
	commandValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_validations_total",
			Help: "Command validations by outcome.",
		},
		[]string{"result"}, // valid / invalid
	)

	commandRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_redemptions_total",
			Help: "Command redemptions by outcome and rejection reason.",
		},
		[]string{"result", "reason"},
	)

	commandRedemptionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "command_redemption_duration_seconds",
			Help:    "Time spent handling a redemption attempt.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncValidation(valid bool) {
	result := "invalid"
	if valid {
		result = "valid"
	}
	commandValidationsTotal.WithLabelValues(result).Inc()
}

// ObserveRedemption records one redemption attempt. reason is empty on success.
func ObserveRedemption(success bool, reason string, elapsed time.Duration) {
	commandRedemptionsTotal.WithLabelValues(strconv.FormatBool(success), reason).Inc()
	commandRedemptionDuration.Observe(elapsed.Seconds())
}
