// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package service wires the transform buffer to the transport: it
// subscribes transforms/new and serves transforms/get, translating
// wire records into buffer.Graph calls and back.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aleutian-robotics/framebus/internal/buffer"
	"github.com/aleutian-robotics/framebus/internal/logging"
	"github.com/aleutian-robotics/framebus/internal/metrics"
	"github.com/aleutian-robotics/framebus/internal/transport"
	"github.com/aleutian-robotics/framebus/internal/wire"
)

// TopicNewTransform is the pub/sub topic transforms are published to.
const TopicNewTransform = "transforms/new"

// EndpointTransformGet is the request/reply endpoint transform queries
// are sent to.
const EndpointTransformGet = "transforms/get"

// Options configures a Service.
type Options struct {
	Bus     transport.Bus
	Buffer  *buffer.Graph
	Metrics *metrics.ServiceMetrics
	Logger  *logging.Logger
}

// Service owns one buffer.Graph, subscribes transforms/new, and serves
// transforms/get. See ServerHandle for programmatic start/stop.
type Service struct {
	bus     transport.Bus
	buf     *buffer.Graph
	metrics *metrics.ServiceMetrics
	log     *logging.Logger
	tracer  trace.Tracer

	newSub transport.Subscription
	getSub transport.Subscription
}

// New constructs a Service. Call Start to begin serving.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		bus:     opts.Bus,
		buf:     opts.Buffer,
		metrics: opts.Metrics,
		log:     log,
		tracer:  otel.Tracer("framebus/service"),
	}
}

// Start subscribes transforms/new and registers the transforms/get
// responder. It returns once both registrations succeed; message
// handling continues on the transport's own dispatch goroutines.
func (s *Service) Start(ctx context.Context) error {
	newSub, err := s.bus.Subscribe(TopicNewTransform, s.handleNewTransform(ctx))
	if err != nil {
		return fmt.Errorf("service: subscribe %s: %w", TopicNewTransform, err)
	}
	s.newSub = newSub

	getSub, err := s.bus.Respond(EndpointTransformGet, s.handleTransformGet(ctx))
	if err != nil {
		_ = newSub.Unsubscribe()
		return fmt.Errorf("service: respond %s: %w", EndpointTransformGet, err)
	}
	s.getSub = getSub

	if s.metrics != nil {
		s.metrics.ActiveSubscribe.Inc()
	}
	return nil
}

// Stop unsubscribes both endpoints. It does not close the underlying
// Bus; the owner of the Bus is responsible for that.
func (s *Service) Stop() error {
	var errs []error
	if s.newSub != nil {
		if err := s.newSub.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.getSub != nil {
		if err := s.getSub.Unsubscribe(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.metrics != nil {
		s.metrics.ActiveSubscribe.Dec()
	}
	if len(errs) > 0 {
		return fmt.Errorf("service: stop: %v", errs)
	}
	return nil
}

// handleNewTransform decodes a NewTransform and applies it to the
// buffer. Decode failures and buffer errors are logged and the message
// is dropped; the publisher is never informed, matching the
// fire-and-forget publish contract.
func (s *Service) handleNewTransform(ctx context.Context) transport.Handler {
	return func(payload []byte) {
		_, span := s.tracer.Start(ctx, "service.handleNewTransform")
		defer span.End()

		var nt wire.NewTransform
		if err := wire.DecodeExact(payload, &nt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode failed")
			s.log.Warn("dropping malformed NewTransform", "error", err)
			s.countDecodeError(TopicNewTransform)
			return
		}
		span.SetAttributes(attribute.String("from", nt.From), attribute.String("to", nt.To))

		kind := buffer.Static
		if nt.Kind == wire.KindDynamic {
			kind = buffer.Dynamic
		}
		sp := buffer.StampedPose{
			Stamp: buffer.Timestamp(nt.Time),
			Pose: buffer.Pose{
				Translation: buffer.Vec3{X: nt.Translation[0], Y: nt.Translation[1], Z: nt.Translation[2]},
				Rotation:    buffer.NewQuat(nt.Rotation[0], nt.Rotation[1], nt.Rotation[2], nt.Rotation[3]),
			},
		}
		if err := s.buf.Update(nt.From, nt.To, sp, kind); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
			s.log.Warn("buffer update failed", "from", nt.From, "to", nt.To, "error", err)
			outcome := "error"
			switch {
			case errors.Is(err, buffer.ErrInvalidGraph):
				outcome = "invalid_graph"
			case errors.Is(err, buffer.ErrOutOfOrder):
				outcome = "out_of_order"
			}
			s.countUpdate(outcome)
			return
		}
		s.countUpdate("ok")
	}
}

// handleTransformGet decodes a TransformRequest, resolves it against
// the buffer, and encodes exactly one TransformResponse.
func (s *Service) handleTransformGet(ctx context.Context) transport.RequestHandler {
	return func(payload []byte) ([]byte, error) {
		_, span := s.tracer.Start(ctx, "service.handleTransformGet")
		defer span.End()

		var req wire.TransformRequest
		if err := wire.DecodeExact(payload, &req); err != nil {
			span.RecordError(err)
			s.countDecodeError(EndpointTransformGet)
			return wire.Encode(wire.TransformResponse{Success: false, ErrorMessage: err.Error()})
		}
		span.SetAttributes(attribute.String("from", req.From), attribute.String("to", req.To))

		start := time.Now()
		var sp buffer.StampedPose
		var err error
		if req.Time == int64(buffer.LatestSentinel) {
			sp, err = s.buf.LookupLatest(req.From, req.To)
		} else {
			sp, err = s.buf.LookupAt(req.From, req.To, buffer.Timestamp(req.Time))
		}
		s.observeLookupDuration(time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
			s.countLookup(outcomeFor(err))
			return wire.Encode(wire.TransformResponse{Success: false, ErrorMessage: err.Error(), ID: req.ID})
		}
		s.countLookup("ok")
		return wire.Encode(wire.TransformResponse{
			Time:        int64(sp.Stamp),
			Translation: [3]float64{sp.Pose.Translation.X, sp.Pose.Translation.Y, sp.Pose.Translation.Z},
			Rotation:    [4]float64{sp.Pose.Rotation.X, sp.Pose.Rotation.Y, sp.Pose.Rotation.Z, sp.Pose.Rotation.W},
			Success:     true,
			ID:          req.ID,
		})
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, buffer.ErrAttemptedLookupInPast):
		return "past"
	case errors.Is(err, buffer.ErrAttemptedLookupInFuture):
		return "future"
	default:
		return "not_found"
	}
}

func (s *Service) countUpdate(outcome string) {
	if s.metrics != nil {
		s.metrics.UpdatesTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) countLookup(outcome string) {
	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) countDecodeError(topic string) {
	if s.metrics != nil {
		s.metrics.DecodeErrors.WithLabelValues(topic).Inc()
	}
}

func (s *Service) observeLookupDuration(d time.Duration) {
	if s.metrics != nil {
		s.metrics.LookupDuration.WithLabelValues(EndpointTransformGet).Observe(d.Seconds())
	}
}
