package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
var (
	AttrHTTPMethod  = attribute.Key("http.method")
	AttrHTTPRoute   = attribute.Key("http.route")
	AttrHTTPStatus  = attribute.Key("http.status_code")
	AttrPeerService = attribute.Key("peer.service")
	AttrResult      = attribute.Key("result")
	AttrStore       = attribute.Key("task.store")
	AttrEventType   = attribute.Key("event.type")
)

// Metrics are the instruments the service records into. Durations are in
// seconds.
type Metrics struct {
	ServerRequestDuration metric.Float64Histogram
	ServerRequestTotal    metric.Int64Counter
	ClientRequestDuration metric.Float64Histogram
	ClientRequestTotal    metric.Int64Counter
	StoreSaveDuration     metric.Float64Histogram
	StoreSaveTotal        metric.Int64Counter
	EventPublishTotal     metric.Int64Counter
}

// NewMetrics registers every instrument on a meter named after the service.
func NewMetrics(mp metric.MeterProvider, serviceName string) (*Metrics, error) {
	b := builder{meter: mp.Meter(serviceName)}
	m := &Metrics{
		ServerRequestDuration: b.seconds("http.server.request.duration", "Inbound HTTP request latency"),
		ServerRequestTotal:    b.count("http.server.request.total", "Inbound HTTP requests", "{request}"),
		ClientRequestDuration: b.seconds("http.client.request.duration", "Outbound HTTP request latency, retries included"),
		ClientRequestTotal:    b.count("http.client.request.total", "Outbound HTTP requests", "{request}"),
		StoreSaveDuration:     b.seconds("task.store.save.duration", "Task store save latency"),
		StoreSaveTotal:        b.count("task.store.save.total", "Task store saves", "{operation}"),
		EventPublishTotal:     b.count("task.events.publish.total", "Task events published", "{event}"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// builder keeps the first registration error so NewMetrics reads as a table.
type builder struct {
	meter metric.Meter
	err   error
}

func (b *builder) seconds(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.fail(name, err)
	return h
}

func (b *builder) count(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.fail(name, err)
	return c
}

func (b *builder) fail(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("registering %s: %w", name, err)
	}
}
