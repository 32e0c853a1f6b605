// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/aleutian-robotics/framebus/internal/logging"
	"github.com/aleutian-robotics/framebus/internal/transport"
)

const httpShutdownTimeout = 5 * time.Second

// visualizationInterval is how often Run dumps graph.dot/graph.pdf
// when savePath is non-empty.
const visualizationInterval = 30 * time.Second

// ServerHandle provides programmatic shutdown and join for an embedded
// Service plus its debug HTTP surface (/metrics, /healthz). Cancelling
// the handle's context stops both the transport subscriptions and the
// HTTP listener; Join blocks until everything has wound down.
type ServerHandle struct {
	svc    *Service
	bus    transport.Bus
	cancel context.CancelFunc
	group  *errgroup.Group
	http   *http.Server
}

// Run starts svc and an HTTP debug listener on metricsAddr (empty
// disables the listener), returning a handle for shutdown/join. bus is
// closed on Stop if ownBus is true. When savePath is non-empty, the
// buffer's graph.dot/graph.pdf are dumped there every
// visualizationInterval and once more on shutdown.
func Run(ctx context.Context, svc *Service, bus transport.Bus, ownBus bool, metricsAddr, savePath string, log *logging.Logger) (*ServerHandle, error) {
	if log == nil {
		log = logging.Default()
	}
	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	if err := svc.Start(groupCtx); err != nil {
		cancel()
		return nil, err
	}

	h := &ServerHandle{svc: svc, bus: bus, cancel: cancel, group: group}

	if metricsAddr != "" {
		router := gin.New()
		router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})))
		srv := &http.Server{Addr: metricsAddr, Handler: router}
		h.http = srv
		group.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	if savePath != "" {
		group.Go(func() error {
			ticker := time.NewTicker(visualizationInterval)
			defer ticker.Stop()
			for {
				select {
				case <-groupCtx.Done():
					if _, err := svc.buf.SaveVisualization(savePath); err != nil {
						log.Warn("final visualization dump failed", "error", err)
					}
					return nil
				case <-ticker.C:
					if _, err := svc.buf.SaveVisualization(savePath); err != nil {
						log.Warn("visualization dump failed", "error", err)
					}
				}
			}
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		if h.http != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer shutdownCancel()
			if err := h.http.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown error", "error", err)
			}
		}
		if err := svc.Stop(); err != nil {
			log.Warn("service stop error", "error", err)
		}
		if ownBus {
			if err := bus.Close(); err != nil {
				log.Warn("bus close error", "error", err)
			}
		}
		return nil
	})

	return h, nil
}

// Stop cancels the handle's context, triggering shutdown of the HTTP
// listener and the service's subscriptions.
func (h *ServerHandle) Stop() { h.cancel() }

// Join blocks until shutdown has fully completed, returning the first
// error encountered by any managed goroutine.
func (h *ServerHandle) Join() error { return h.group.Wait() }
