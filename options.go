package mempool

import (
	"unsafe"

	"github.com/go-kit/log"
)

// DefaultAlignment is the alignment of every reservation start address unless
// overridden with WithAlignment.
const DefaultAlignment = int(unsafe.Sizeof(uintptr(0)))

type options struct {
	name      string
	logger    log.Logger
	alignment int
	metrics   *Metrics
}

// Option configures a Pool.
type Option func(*options)

// WithName labels the pool in logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the sink for allocation and error diagnostics. The default
// logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAlignment sets the start address alignment. Must be a power of two.
func WithAlignment(align int) Option {
	return func(o *options) { o.alignment = align }
}

// WithMetrics reports pool activity to m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func defaultOptions() options {
	return options{
		name:      "pool",
		logger:    log.NewNopLogger(),
		alignment: DefaultAlignment,
	}
}
