package metrics

import (
	coremetrics "github.com/ogauthier/obsched/core/metrics"
	"github.com/ogauthier/obsched/infra/logger"
)

// FromConfig assembles the configured sinks into a single Sink. With no
// sink enabled the result discards everything.
func FromConfig(cfg coremetrics.Config, log logger.Logger) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := NewPromSink(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sinks = append(sinks, NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket))
	}
	switch len(sinks) {
	case 0:
		return coremetrics.NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		if log != nil {
			log.Infof("metrics: fanning out to %d sinks", len(sinks))
		}
		return NewMultiSink(sinks...), nil
	}
}
