package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Counters are created eagerly so services can increment them whether or not
// a registry was wired; Register exposes them on the scrape endpoint.
var (
	ChallengesIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_challenges_issued_total",
		Help: "Total number of custom challenges issued.",
	})
	ChallengeSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_challenge_success_total",
		Help: "Total number of ceremonies terminated with tokens issued.",
	})
	CodeMatchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_code_match_total",
		Help: "Total number of submitted codes that matched.",
	})
	CodeMismatchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_code_mismatch_total",
		Help: "Total number of submitted codes that did not match.",
	})
	CodesDispatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_codes_dispatched_total",
		Help: "Total number of login codes handed to the mail relay.",
	})
	DispatchFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_dispatch_failure_total",
		Help: "Total number of login-code emails that failed to send.",
	})
	PersistFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_persist_failure_total",
		Help: "Total number of one-time-code store writes that failed.",
	})
	FallbackChallengeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_fallback_challenge_total",
		Help: "Total number of unpassable fallback challenges issued (missing email attribute).",
	})
	UsersRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_users_registered_total",
		Help: "Total number of user records created after confirmed sign-up.",
	})
)

// Register registers the service counters with the given registry.
// It should be called once at application startup.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics")
		return
	}
	collectors := []prometheus.Collector{
		ChallengesIssuedTotal,
		ChallengeSuccessTotal,
		CodeMatchTotal,
		CodeMismatchTotal,
		CodesDispatchedTotal,
		DispatchFailureTotal,
		PersistFailureTotal,
		FallbackChallengeTotal,
		UsersRegisteredTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register Prometheus collector")
		}
	}
	log.Info().Msg("Custom Prometheus metrics registered.")
}
