package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/bayleafwalker/bindery-explorer/internal/app"
	"github.com/bayleafwalker/bindery-explorer/internal/config"
	"github.com/bayleafwalker/bindery-explorer/internal/queryserver"
)

func main() {
	_ = godotenv.Load()

	var configPath string
	var recordsPath string
	var listenAddr string
	var metricsAddr string
	flag.StringVar(&configPath, "config", os.Getenv(config.EnvConfig), "path of the explorer configuration file")
	flag.StringVar(&recordsPath, "records", "", "path of the distribution dump; overrides the configured one")
	flag.StringVar(&listenAddr, "listen", "", "address to listen on; overrides the configured one")
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "address the metric endpoint binds to, empty to disable")

	opts := zap.Options{Development: true}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	log := ctrl.Log.WithName("snapshot-server")

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}
	if recordsPath != "" {
		cfg.Records.Path = recordsPath
	}
	if listenAddr != "" {
		cfg.Server.Listen = listenAddr
	}

	ctx := ctrl.SetupSignalHandler()
	snap, err := app.LoadSnapshot(ctx, cfg, log)
	if err != nil {
		panic(fmt.Errorf("load snapshot: %w", err))
	}

	srv, err := queryserver.New(snap,
		queryserver.WithPresets(cfg.Filters...),
		queryserver.WithCategories(cfg.Graph.Categories...),
		queryserver.WithCacheSize(cfg.Server.GraphCacheSize),
		queryserver.WithLogger(log),
	)
	if err != nil {
		panic(err)
	}

	if metricsAddr != "" {
		go serveMetrics(ctx, metricsAddr)
	}

	lis, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		panic(fmt.Errorf("listen %s: %w", cfg.Server.Listen, err))
	}

	grpcServer := srv.NewGRPCServer()
	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	log.Info("serving snapshot queries", "listen", cfg.Server.Listen, "snapshot", snap.Key())
	if err := grpcServer.Serve(lis); err != nil {
		panic(fmt.Errorf("grpc serve: %w", err))
	}
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	hs := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = hs.Close()
	}()
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		ctrl.Log.WithName("metrics").Error(err, "metrics server stopped")
	}
}
