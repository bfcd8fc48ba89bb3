package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Suppression reasons
const (
	suppressedCapability = "capability"
	suppressedDismissed  = "dismissed"
	suppressedInvalid    = "invalid"
)

var (
	noticeRenderedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticekit_notice_rendered_total",
			Help: "Notices rendered by severity.",
		},
		[]string{"severity"},
	)
	noticeSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticekit_notice_suppressed_total",
			Help: "Notices not rendered by reason.",
		},
		[]string{"reason"},
	)
	dismissalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noticekit_dismissal_total",
			Help: "Dismissal requests by result.",
		},
		[]string{"result"},
	)
)
