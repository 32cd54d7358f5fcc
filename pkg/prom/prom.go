package prom

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	xhttp "github.com/thammystudio/studio-crm/pkg/http"
	"github.com/thammystudio/studio-crm/pkg/logger"
)

const (
	SystemLeads     = "leads"
	SystemReminders = "reminders"
	SystemMessages  = "messages"
)

const (
	MetricLeadsCreated             = "created_total"
	MetricRemindersOverdue         = "overdue"
	MetricRemindersUpcoming        = "upcoming"
	MetricRemindersTransitions     = "transitions_total"
	MetricMessagesDelivered        = "delivered_total"
	MetricMessageDeliveredDuration = "delivered_duration_seconds"
)

const (
	TypeCounterVec   = "counterVec"
	TypeGauge        = "gauge"
	TypeHistogramVec = "histogramVec"
	TypeGaugeVec     = "gaugeVec"
)

var (
	lock      = &sync.Mutex{}
	namespace = "none"
	enabled   = false

	counterVecs   = make(map[string]*prometheus.CounterVec)
	gauges        = make(map[string]prometheus.Gauge)
	gaugeVecs     = make(map[string]*prometheus.GaugeVec)
	histogramVecs = make(map[string]*prometheus.HistogramVec)

	defaultLabels prometheus.Labels
)

// Create registers the service metrics and enables recording. Until it is
// called every recording function is a no-op.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = prometheus.Labels{"env": env, "instance": host}
	namespace = nameSpace
	enabled = true

	return errors.Join(
		createCounterVec(SystemLeads, MetricLeadsCreated, []string{"source", "priority"}),
		createGauge(SystemReminders, MetricRemindersOverdue),
		createGauge(SystemReminders, MetricRemindersUpcoming),
		createCounterVec(SystemReminders, MetricRemindersTransitions, []string{"to"}),
		createCounterVec(SystemMessages, MetricMessagesDelivered, []string{"status"}),
		createHistogramVec(SystemMessages, MetricMessageDeliveredDuration, []string{"priority"}),
	)
}

func CreateMetric(metricType, metricSubsystem, metricName string, labels ...string) error {
	switch metricType {
	case TypeCounterVec:
		return createCounterVec(metricSubsystem, metricName, labels)
	case TypeGauge:
		return createGauge(metricSubsystem, metricName)
	case TypeGaugeVec:
		return createGaugeVec(metricSubsystem, metricName, labels)
	case TypeHistogramVec:
		return createHistogramVec(metricSubsystem, metricName, labels)
	}
	return fmt.Errorf("metric type %s is not defined", metricType)
}

func ListenAndServer(addr string, url string) {
	s := xhttp.CreateServer()
	s.GET(url, fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler()))
	logger.Info("[metrics-server] listening...", "addr", addr, "url", url)
	if err := s.ListenAndServe(addr); err != nil {
		logger.Error("[metrics-server] http listen error", "error", err)
	}
}

// register adds c to the default registry. A collector registered by an
// earlier Create is reused.
func register[T prometheus.Collector](c T) (T, error) {
	err := prometheus.Register(c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return c, err
}

func createCounterVec(subsystem, name string, labels []string) error {
	lock.Lock()
	defer lock.Unlock()
	c, err := register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels))
	counterVecs[subsystem+name] = c
	return err
}

func createGauge(subsystem, name string) error {
	lock.Lock()
	defer lock.Unlock()
	g, err := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}))
	gauges[subsystem+name] = g
	return err
}

func createGaugeVec(subsystem, name string, labels []string) error {
	lock.Lock()
	defer lock.Unlock()
	g, err := register(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
	}, labels))
	gaugeVecs[subsystem+name] = g
	return err
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lock.Lock()
	defer lock.Unlock()
	h, err := register(prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels))
	histogramVecs[subsystem+name] = h
	return err
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !enabled {
		return
	}
	if v, ok := counterVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func SetGauge(subsystem, name string, value float64) {
	if !enabled {
		return
	}
	if g, ok := gauges[subsystem+name]; ok {
		g.Set(value)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

func SetGaugeVec(subsystem, name string, value float64, labelValues ...string) {
	if !enabled {
		return
	}
	if g, ok := gaugeVecs[subsystem+name]; ok {
		g.WithLabelValues(labelValues...).Set(value)
		return
	}
	logger.Warn("[metrics-server] gauge vec not found", "subsystem", subsystem, "name", name)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !enabled {
		return
	}
	if v, ok := histogramVecs[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func IncLeadCreated(source, priority string) {
	IncCounterVec(SystemLeads, MetricLeadsCreated, source, priority)
}

func IncReminderTransition(to string) {
	IncCounterVec(SystemReminders, MetricRemindersTransitions, to)
}

func SetReminderBacklog(overdue, upcoming int) {
	SetGauge(SystemReminders, MetricRemindersOverdue, float64(overdue))
	SetGauge(SystemReminders, MetricRemindersUpcoming, float64(upcoming))
}

func IncMessageDelivered(status string) {
	IncCounterVec(SystemMessages, MetricMessagesDelivered, status)
}

func AddMessageDeliveryDuration(seconds float64, priority string) {
	AddHistogramVec(SystemMessages, MetricMessageDeliveredDuration, seconds, priority)
}
