package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Check-in outcome counters, exposed on /metrics alongside the default
// process collectors.
var (
	CheckinsMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_checkins_marked_total",
		Help: "Check-ins that created a new attendance record.",
	})
	CheckinsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_checkins_duplicate_total",
		Help: "Check-ins answered with already-marked.",
	})
	CheckinsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_checkins_failed_total",
		Help: "Check-ins that failed with an error.",
	})
	// Distance beyond the session radius is recorded, not rejected;
	// this counter makes the signal visible to operators.
	CheckinsBeyondRadius = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmark_checkins_beyond_radius_total",
		Help: "Successful check-ins whose distance exceeded the session radius.",
	})
)
