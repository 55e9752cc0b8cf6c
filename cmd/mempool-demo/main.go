package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fulldump/goconfig"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pavanmanishd/mempool"
	"github.com/pavanmanishd/mempool/configuration"
)

var VERSION = "dev"

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", VERSION)
		return
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, levelFilter(c.LogLevel))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := mempool.NewMetrics(reg)

	stringPool, err := newPool("string", c.StringPool, logger, metrics)
	if err != nil {
		level.Error(logger).Log("msg", "startup failed", "err", err)
		os.Exit(1)
	}
	vectorPool, err := newPool("vector", c.VectorPool, logger, metrics)
	if err != nil {
		level.Error(logger).Log("msg", "startup failed", "err", err)
		os.Exit(1)
	}

	if _, err := runString(stringPool, c.Appends, logger); err != nil {
		level.Error(logger).Log("msg", "string workload failed", "err", err)
		os.Exit(1)
	}
	if _, err := runVector(vectorPool, c.Pushes, logger); err != nil {
		level.Error(logger).Log("msg", "vector workload failed", "err", err)
		os.Exit(1)
	}

	for _, p := range []*mempool.Pool{stringPool, vectorPool} {
		m := p.Metrics()
		fmt.Printf("%s (reservations=%d fallbacks=%d out_of_space=%d table_full=%d)\n",
			p, m.Reservations, m.HeapFallbacks, m.OutOfSpace, m.TableFull)
	}

	if c.MetricsAddr == "" {
		return
	}

	s := &http.Server{
		Addr:    c.MetricsAddr,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		level.Info(logger).Log("msg", "signal received", "signal", sig.String())
		s.Shutdown(context.Background())
	}()

	level.Info(logger).Log("msg", "serving metrics", "addr", c.MetricsAddr)
	if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		level.Error(logger).Log("msg", "metrics server failed", "err", err)
		os.Exit(1)
	}
}

func levelFilter(name string) level.Option {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
