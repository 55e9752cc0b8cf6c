package main

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"

	"github.com/pavanmanishd/mempool"
	"github.com/pavanmanishd/mempool/configuration"
	"github.com/pavanmanishd/mempool/container"
)

func newPool(name string, c configuration.Pool, logger log.Logger, m *mempool.Metrics) (*mempool.Pool, error) {
	opts := []mempool.Option{
		mempool.WithName(name),
		mempool.WithLogger(logger),
		mempool.WithMetrics(m),
	}
	if c.Alignment > 0 {
		opts = append(opts, mempool.WithAlignment(c.Alignment))
	}
	p, err := mempool.New(c.Capacity, c.MaxEntries, opts...)
	return p, errors.Wrapf(err, "create %s pool", name)
}

// runString assigns a short string and then appends a fixed chunk n times.
func runString(p *mempool.Pool, n int, logger log.Logger) (string, error) {
	var alloc mempool.Allocator[byte]
	if err := alloc.Bind(p); err != nil {
		return "", err
	}

	s := container.NewString(alloc)
	s.Assign("afakwfjaw")
	for i := 0; i < n; i++ {
		s.Append("12334124")
	}
	out := s.String()
	level.Info(logger).Log("msg", "string workload done", "len", s.Len(), "cap", s.Cap(), "pool", p)

	return out, errors.Wrap(s.Free(), "free string")
}

// runVector pushes 0..n-1 into a vector of int32.
func runVector(p *mempool.Pool, n int, logger log.Logger) (int64, error) {
	v := container.NewVector(mempool.BoundTo[int32](p))
	for i := 0; i < n; i++ {
		v.Append(int32(i))
	}

	var sum int64
	for _, x := range v.Slice() {
		sum += int64(x)
	}
	level.Info(logger).Log("msg", "vector workload done", "len", v.Len(), "cap", v.Cap(), "pool", p)

	return sum, errors.Wrap(v.Free(), "free vector")
}
