package pipeline

import (
	"golang.org/x/time/rate"

	"github.com/fxsml/flowline"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	logger    flowline.Logger
	collector flowline.Collector
	limiter   *rate.Limiter
}

func parseOptions(opts []Option) options {
	o := options{logger: flowline.DefaultLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for worker lifecycle and failure messages.
// Default: flowline.DefaultLogger().
func WithLogger(l flowline.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithCollector sets the metrics collector invoked for each processed item.
func WithCollector(c flowline.Collector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithRateLimit throttles Submit with a token bucket of perSecond sustained
// submissions and the given burst size. Burst defaults to 1 if <= 0.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		if perSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}
