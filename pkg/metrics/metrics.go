package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OdooCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odoo_xmlrpc_calls_total",
		Help: "Вызовы execute_kw по модели, методу и результату",
	}, []string{"model", "method", "outcome"})

	OdooCallSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odoo_xmlrpc_call_seconds",
		Help:    "Длительность вызовов execute_kw",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"model", "method"})

	PipelineRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lead_pipeline_records_total",
		Help: "Обработанные записи импорта/синхронизации по результату",
	}, []string{"pipeline", "outcome"})
)

// Register регистрирует метрики в переданном реестре (или в реестре по умолчанию).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{OdooCalls, OdooCallSeconds, PipelineRecords} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// WriteTextfile сохраняет метрики в формате textfile-коллектора node_exporter.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
