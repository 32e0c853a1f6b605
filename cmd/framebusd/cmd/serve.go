// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aleutian-robotics/framebus/internal/buffer"
	"github.com/aleutian-robotics/framebus/internal/config"
	"github.com/aleutian-robotics/framebus/internal/logging"
	"github.com/aleutian-robotics/framebus/internal/metrics"
	"github.com/aleutian-robotics/framebus/internal/service"
	"github.com/aleutian-robotics/framebus/internal/tracing"
	"github.com/aleutian-robotics/framebus/internal/transport"
)

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:           "serve",
		Short:         "run the transform service until a shutdown signal is observed",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return c
}

func runServe(ctx context.Context) error {
	if err := config.Load(configPath); err != nil {
		return &exitError{code: ExitInitFailure, err: fmt.Errorf("load config: %w", err)}
	}
	cfg := config.Global

	level := logging.LevelInfo
	if cfg.Log.Level == "debug" {
		level = logging.LevelDebug
	}
	log := logging.New(logging.Config{Level: level, Service: "framebusd", JSON: cfg.Log.JSON})

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return &exitError{code: ExitInitFailure, err: fmt.Errorf("init tracing: %w", err)}
	}

	bus, ownBus, err := dialTransport(cfg.Transport)
	if err != nil {
		return &exitError{code: ExitInitFailure, err: err}
	}

	buf := buffer.NewGraph(buffer.WithMaxTransformHistory(cfg.Buffer.GetMaxTransformHistory()))
	m := metrics.NewServiceMetrics(prometheus.DefaultRegisterer)
	svc := service.New(service.Options{Bus: bus, Buffer: buf, Metrics: m, Logger: log})

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handle, err := service.Run(sigCtx, svc, bus, ownBus, cfg.Metrics.ListenAddr, cfg.Buffer.SavePath, log)
	if err != nil {
		return &exitError{code: ExitInitFailure, err: fmt.Errorf("start service: %w", err)}
	}
	log.Info("framebusd started", "transport", cfg.Transport.Mode)

	<-sigCtx.Done()
	log.Info("shutdown signal received")
	handle.Stop()
	joinErr := handle.Join()
	if err := shutdownTracing(context.Background()); err != nil {
		log.Warn("tracing shutdown failed", "error", err)
	}
	if joinErr != nil {
		return &exitError{code: ExitTransportFailure, err: fmt.Errorf("transport failure: %w", joinErr)}
	}
	log.Info("clean shutdown")
	return nil
}

func dialTransport(cfg config.TransportConfig) (transport.Bus, bool, error) {
	switch cfg.Mode {
	case "", "embedded":
		return transport.NewEmbedded(), true, nil
	case "nats":
		bus, err := transport.DialNATS(cfg.NATSURL)
		if err != nil {
			return nil, false, fmt.Errorf("dial nats at %s: %w", cfg.NATSURL, err)
		}
		return bus, true, nil
	default:
		return nil, false, fmt.Errorf("unknown transport.mode %q", cfg.Mode)
	}
}
