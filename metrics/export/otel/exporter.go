package otel

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilMeter is returned when no meter is supplied.
	ErrNilMeter = errors.New("nil meter")
	// ErrNilSource is returned when no snapshot source is supplied.
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() goGate.MetricsSnapshot
	AuditDroppedKind(kind goGate.AuditKind) uint64
}

// Instrument names.
const (
	RequestsName       = "gogate.requests"
	LoginsName         = "gogate.logins"
	SessionsName       = "gogate.sessions"
	LogoutsName        = "gogate.logouts"
	FailuresName       = "gogate.collaborator.failures"
	LatencyBucketsName = "gogate.evaluate.latency.buckets"
	LatencyCountName   = "gogate.evaluate.latency.count"
	AuditDroppedName   = "gogate.audit.dropped"
)

// series binds one gate counter to an instrument and its attributes.
type series struct {
	id    goGate.MetricID
	attrs metric.ObserveOption
}

type labeled struct {
	id    goGate.MetricID
	value string
}

// family is one instrument whose series differ by the value of key.
type family struct {
	name, help string
	key        string
	series     []labeled
}

var families = []family{
	{RequestsName, "Gate decisions by outcome.", "decision", []labeled{
		{goGate.MetricRequestAuthenticated, "authenticated"},
		{goGate.MetricRequestAnonymous, "anonymous"},
		{goGate.MetricRequestExempt, "exempt"},
		{goGate.MetricRequestUnauthenticated, "unauthenticated"},
		{goGate.MetricRequestForbidden, "forbidden"},
	}},
	{LoginsName, "Login attempts by outcome.", "outcome", []labeled{
		{goGate.MetricLoginSuccess, "success"},
		{goGate.MetricLoginFailure, "failure"},
		{goGate.MetricLoginRateLimited, "rate_limited"},
	}},
	{SessionsName, "Session lifecycle operations.", "operation", []labeled{
		{goGate.MetricSessionCreated, "created"},
		{goGate.MetricSessionDestroyed, "destroyed"},
	}},
}

var auditKinds = []goGate.AuditKind{
	goGate.AuditLoginSucceeded,
	goGate.AuditLoginFailed,
	goGate.AuditLoginRateLimited,
	goGate.AuditLogout,
	goGate.AuditRequestUnauthenticated,
	goGate.AuditRequestForbidden,
}

type observedCounter struct {
	instrument metric.Int64ObservableCounter
	series     []series
}

// OTelExporter publishes gate counters as OTel observable instruments.
// Related counters share an instrument and differ by attribute, e.g.
// gogate.requests{decision="forbidden"}. Latency is a cumulative gauge keyed
// by "le", the way a Prometheus histogram lays out its buckets.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration

	counters     []observedCounter
	buckets      metric.Int64ObservableGauge
	bucketAttrs  [8]metric.ObserveOption
	count        metric.Int64ObservableGauge
	auditDropped metric.Int64ObservableCounter
	kindAttrs    []metric.ObserveOption
}

// NewOTelExporter registers instruments on meter that read from gate.
func NewOTelExporter(meter metric.Meter, gate *goGate.Gate) (*OTelExporter, error) {
	if gate == nil {
		return nil, ErrNilSource
	}
	return NewOTelExporterFromSource(meter, gate)
}

func withAttr(key, value string) metric.ObserveOption {
	return metric.WithAttributeSet(attribute.NewSet(attribute.String(key, value)))
}

// NewOTelExporterFromSource registers instruments that read from source.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}
	var observables []metric.Observable

	counter := func(name, help string, ss []series) error {
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(help))
		if err != nil {
			return fmt.Errorf("create observable counter %s: %w", name, err)
		}
		e.counters = append(e.counters, observedCounter{instrument: ins, series: ss})
		observables = append(observables, ins)
		return nil
	}

	for _, f := range families {
		ss := make([]series, 0, len(f.series))
		for _, s := range f.series {
			ss = append(ss, series{id: s.id, attrs: withAttr(f.key, s.value)})
		}
		if err := counter(f.name, f.help, ss); err != nil {
			return nil, err
		}
	}
	if err := counter(LogoutsName, "Logout operations.", []series{{id: goGate.MetricLogout}}); err != nil {
		return nil, err
	}
	if err := counter(FailuresName, "User repository or session store errors.", []series{{id: goGate.MetricCollaboratorFailure}}); err != nil {
		return nil, err
	}

	var err error
	e.buckets, err = meter.Int64ObservableGauge(LatencyBucketsName,
		metric.WithDescription("Cumulative evaluation latency samples at or under le seconds."))
	if err != nil {
		return nil, fmt.Errorf("create latency bucket gauge: %w", err)
	}
	for i, bound := range internaldefs.HistogramUpperBounds {
		e.bucketAttrs[i] = withAttr("le", strconv.FormatFloat(bound, 'g', -1, 64))
	}
	e.bucketAttrs[len(e.bucketAttrs)-1] = withAttr("le", "+Inf")

	e.count, err = meter.Int64ObservableGauge(LatencyCountName, metric.WithDescription("Evaluation latency samples."))
	if err != nil {
		return nil, fmt.Errorf("create latency count gauge: %w", err)
	}

	e.auditDropped, err = meter.Int64ObservableCounter(AuditDroppedName, metric.WithDescription(internaldefs.AuditDroppedHelp))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	for _, kind := range auditKinds {
		e.kindAttrs = append(e.kindAttrs, withAttr("kind", string(kind)))
	}
	observables = append(observables, e.buckets, e.count, e.auditDropped)

	e.registration, err = meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	return e, nil
}

func (e *OTelExporter) observe(_ context.Context, o metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, c := range e.counters {
		for _, s := range c.series {
			v := int64(snapshot.Counters[s.id])
			if s.attrs == nil {
				o.ObserveInt64(c.instrument, v)
				continue
			}
			o.ObserveInt64(c.instrument, v, s.attrs)
		}
	}

	cumulative := internaldefs.CumulativeBuckets(
		internaldefs.NormalizeBuckets(snapshot.Histograms[goGate.MetricEvaluateLatency]))
	for i, v := range cumulative {
		o.ObserveInt64(e.buckets, int64(v), e.bucketAttrs[i])
	}
	o.ObserveInt64(e.count, int64(cumulative[len(cumulative)-1]))

	for i, kind := range auditKinds {
		o.ObserveInt64(e.auditDropped, int64(e.source.AuditDroppedKind(kind)), e.kindAttrs[i])
	}
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
