// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "license_applications_created_total",
		Help: "Applications created, by application type.",
	}, []string{"type"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "license_status_transitions_total",
		Help: "Status transitions applied, by target status.",
	}, []string{"to_status"})

	TransitionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "license_status_transitions_rejected_total",
		Help: "Status transitions rejected as illegal or stale.",
	})

	PaymentsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "license_payments_completed_total",
		Help: "Payments completed, by payment method.",
	}, []string{"method"})

	PaymentAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "license_payment_amount_ariary_total",
		Help: "Total amount collected in Ariary, by fee type.",
	}, []string{"fee_type"})

	LicensesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "license_licenses_issued_total",
		Help: "Licenses issued.",
	})

	IssueDuplicatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "license_issue_duplicates_suppressed_total",
		Help: "Issue requests that found an existing license for the application.",
	})

	DraftsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "license_drafts_expired_total",
		Help: "Draft applications cancelled by the expiry sweep.",
	})
)
