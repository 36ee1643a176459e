package mrz

import (
	"github.com/rs/zerolog"

	"github.com/medflow/mrz-scanner/pkg/logger"
)

// Option configures parsing.
type Option func(*options)

type options struct {
	log zerolog.Logger
}

// WithLogger routes parse diagnostics to log. Without it the engine is
// silent.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log.With().Str("component", "mrz").Logger()
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
