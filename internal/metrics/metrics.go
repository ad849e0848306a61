package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelkov/staybook/internal/destination"
)

// collectLimit bounds how many destinations a single scrape reports.
const collectLimit = 50

var searchCountDesc = prometheus.NewDesc(
	"staybook_destination_search_total",
	"Selection count per destination, read from the local store on scrape",
	[]string{"destination_id", "city", "country_code"},
	nil,
)

// TopDestinationsStore is the read side needed by the collector.
type TopDestinationsStore interface {
	TopDestinations(ctx context.Context, limit int) ([]destination.Destination, error)
}

// SearchCountCollector is a custom Prometheus collector that reads the
// most searched destinations from the database on each scrape.
type SearchCountCollector struct {
	store TopDestinationsStore
	log   *slog.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *SearchCountCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- searchCountDesc
}

// Collect queries the store for the top destinations and emits their
// search counts as counters. A failed scrape logs and emits nothing.
func (c *SearchCountCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tops, err := c.store.TopDestinations(ctx, collectLimit)
	if err != nil {
		c.log.Error("collecting destination search metrics failed", "err", err)
		return
	}

	for _, d := range tops {
		ch <- prometheus.MustNewConstMetric(
			searchCountDesc,
			prometheus.CounterValue,
			float64(d.SearchCount),
			d.DestinationID,
			d.CityName,
			d.CountryCode,
		)
	}
}

// Handler registers the collector on a fresh registry and returns the
// scrape handler to mount on the router.
func Handler(store TopDestinationsStore, log *slog.Logger) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(&SearchCountCollector{store: store, log: log}); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
