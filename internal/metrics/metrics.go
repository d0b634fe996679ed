// metrics собирает метрики прогона импортёра в собственный prometheus-реестр.
// Процесс короткоживущий, поэтому метрики не отдаются по HTTP, а по
// завершении пишутся в файл для node_exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sun-sentiment/article-importer/internal/models"
)

const namespace = "article_importer"

// Collector — метрики одного запуска.
type Collector struct {
	registry *prometheus.Registry

	rowsRead     prometheus.Counter
	rowsValid    prometheus.Counter
	duplicates   prometheus.Counter
	rowsUpserted prometheus.Counter
	files        *prometheus.CounterVec
	fileDuration prometheus.Histogram
	lastSuccess  prometheus.Gauge
}

// New создаёт коллектор с метками запуска dialect и platform.
func New(dialect string, platformID int64) *Collector {
	constLabels := prometheus.Labels{
		"dialect":  dialect,
		"platform": fmt.Sprintf("%d", platformID),
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_read_total",
			Help: "CSV data rows read.", ConstLabels: constLabels,
		}),
		rowsValid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_validated_total",
			Help: "Rows that passed validation.", ConstLabels: constLabels,
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_deduplicated_total",
			Help: "Validated rows collapsed into a later row with the same url.", ConstLabels: constLabels,
		}),
		rowsUpserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rows_upserted_total",
			Help: "Rows inserted or updated in articles.", ConstLabels: constLabels,
		}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "files_total",
			Help: "Processed files by outcome.", ConstLabels: constLabels,
		}, []string{"status"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "file_duration_seconds",
			Help: "Wall time spent on one file.", ConstLabels: constLabels,
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successfully imported file.", ConstLabels: constLabels,
		}),
	}

	c.registry.MustRegister(
		c.rowsRead,
		c.rowsValid,
		c.duplicates,
		c.rowsUpserted,
		c.files,
		c.fileDuration,
		c.lastSuccess,
	)

	return c
}

// ObserveFile учитывает итог обработки одного файла.
func (c *Collector) ObserveFile(r models.FileReport) {
	c.rowsRead.Add(float64(r.Rows))
	c.rowsValid.Add(float64(r.Validated))
	if d := r.Validated - r.Unique; r.Status == models.FileImported && d > 0 {
		c.duplicates.Add(float64(d))
	}
	c.rowsUpserted.Add(float64(r.Upserted))
	c.files.WithLabelValues(string(r.Status)).Inc()
	c.fileDuration.Observe(r.Duration.Seconds())
	if r.Status == models.FileImported {
		c.lastSuccess.Set(float64(time.Now().Unix()))
	}
}

// Registry отдаёт реестр (для тестов и внешних экспортёров).
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile атомарно пишет метрики в path в текстовом формате.
func (c *Collector) WriteTextfile(path string) error {
	const op = "metrics.WriteTextfile"

	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
