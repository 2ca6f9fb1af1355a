package internaldefs

import (
	goGate "github.com/MrEthical07/goGate"
)

// CounterDef maps a gate counter to its exported name.
type CounterDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// HistogramDef maps a gate histogram to its exported name.
type HistogramDef struct {
	ID   goGate.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goGate.MetricRequestAuthenticated, Name: "gogate_request_authenticated_total", Help: "Requests that resolved to a user."},
	{ID: goGate.MetricRequestAnonymous, Name: "gogate_request_anonymous_total", Help: "Requests allowed without a user."},
	{ID: goGate.MetricRequestExempt, Name: "gogate_request_exempt_total", Help: "Requests to excluded paths."},
	{ID: goGate.MetricRequestUnauthenticated, Name: "gogate_request_unauthenticated_total", Help: "Requests rejected with 401."},
	{ID: goGate.MetricRequestForbidden, Name: "gogate_request_forbidden_total", Help: "Requests rejected with 403."},
	{ID: goGate.MetricLoginSuccess, Name: "gogate_login_success_total", Help: "Successful logins."},
	{ID: goGate.MetricLoginFailure, Name: "gogate_login_failure_total", Help: "Failed logins."},
	{ID: goGate.MetricLoginRateLimited, Name: "gogate_login_rate_limited_total", Help: "Logins refused by the failure throttle."},
	{ID: goGate.MetricSessionCreated, Name: "gogate_session_created_total", Help: "Created sessions."},
	{ID: goGate.MetricSessionDestroyed, Name: "gogate_session_destroyed_total", Help: "Destroyed sessions."},
	{ID: goGate.MetricLogout, Name: "gogate_logout_total", Help: "Logout operations."},
	{ID: goGate.MetricCollaboratorFailure, Name: "gogate_collaborator_failure_total", Help: "User repository or session store errors."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGate.MetricEvaluateLatency, Name: "gogate_evaluate_latency_seconds", Help: "Gate evaluation latency."},
}

// AuditDroppedName is the counter for audit events lost to backpressure.
const AuditDroppedName = "gogate_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramUpperBounds are the finite bucket bounds in seconds. The eighth
// bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket for exporters without native
// histogram support.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
