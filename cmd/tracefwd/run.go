package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tsukikage7/tracefwd/app"
	"github.com/Tsukikage7/tracefwd/calltrace"
	"github.com/Tsukikage7/tracefwd/collector"
	"github.com/Tsukikage7/tracefwd/config"
	"github.com/Tsukikage7/tracefwd/formatter"
	"github.com/Tsukikage7/tracefwd/logger"
	"github.com/Tsukikage7/tracefwd/metrics"
	"github.com/Tsukikage7/tracefwd/recovery"
	"github.com/Tsukikage7/tracefwd/server"
	"github.com/Tsukikage7/tracefwd/tracehook"
	"github.com/Tsukikage7/tracefwd/tracing"
)

// loadConfig 加载配置并应用命令行覆盖.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg, err := config.LoadForwarder(f.configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("only-error") {
		cfg.Formatter.OnlyError = f.onlyError
	}
	if f.endpoint != "" {
		cfg.Collector.Endpoint = f.endpoint
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrValidation, err)
	}
	return cfg, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		return err
	}
	defer log.Close()

	tp, err := tracing.NewTracer(&cfg.Tracing, version)
	if err != nil {
		return err
	}

	appOpts := []app.Option{
		app.WithName("tracefwd"),
		app.WithVersion(version),
		app.WithLogger(log),
		app.WithGracefulTimeout(cfg.Collector.Timeout),
		app.WithCleanup("tracer", tp.Shutdown, 10),
	}

	collectorOpts := []collector.Option{
		collector.WithEndpoint(cfg.Collector.Endpoint),
		collector.WithTimeout(cfg.Collector.Timeout),
		collector.WithHeaders(cfg.Collector.Headers),
		collector.WithLogger(log),
		collector.WithTracerProvider(tp),
	}
	formatterOpts := []formatter.Option{
		formatter.WithLogger(log),
		formatter.WithOnlyError(cfg.Formatter.OnlyError),
	}

	var servers []app.Server
	if cfg.Metrics.Enabled {
		m, err := metrics.NewMetrics(&cfg.Metrics)
		if err != nil {
			return err
		}
		collectorOpts = append(collectorOpts, collector.WithMetrics(m))
		formatterOpts = append(formatterOpts, formatter.WithMetrics(m))

		mux := http.NewServeMux()
		mux.Handle(m.GetPath(), m.GetHandler())
		handler := recovery.HTTPMiddleware(recovery.WithLogger(log))(mux)
		servers = append(servers, server.NewHTTP(handler,
			server.WithName("metrics"),
			server.WithAddr(cfg.Metrics.Addr),
			server.WithLogger(log),
		))
	}

	client, err := collector.New(collectorOpts...)
	if err != nil {
		return err
	}
	appOpts = append(appOpts, app.WithCleanup("collector", client.Close, 0))

	var src *tracehook.Source
	formatterOpts = append(formatterOpts,
		formatter.WithForwarder(client),
		formatter.WithReplay(func(r *calltrace.Record) { src.Replay(r) }),
	)
	fm := formatter.New(formatterOpts...)
	src = tracehook.NewSource(fm,
		tracehook.WithLogger(log),
		tracehook.WithEntryData(fm.OnlyError()),
	)

	in, err := openInput(f.input)
	if err != nil {
		return err
	}
	appOpts = append(appOpts, app.WithCloser("input", in, 20))

	return app.New(appOpts...).Use(servers...).Run(cmd.Context(), func(ctx context.Context) error {
		n, err := src.Run(ctx, in)
		log.With(
			logger.Int("events", n),
			logger.String("endpoint", client.Endpoint()),
			logger.Bool("only_error", fm.OnlyError()),
		).Info("event stream finished")
		return err
	})
}
