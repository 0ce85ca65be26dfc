package hwbridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carprop/vhal-go/pkg/hardware"
	"github.com/carprop/vhal-go/pkg/vehicle"
	"github.com/carprop/vhal-go/pkg/version"
	"github.com/carprop/vhal-go/pkg/wire"
)

// Responder serves bridge requests from a local hardware.Access.
type Responder struct {
	transport Transport
	topics    Topics
	hw        hardware.Access
	logger    *slog.Logger
}

// NewResponder subscribes to the request topic of t and forwards hw's
// property changes to the event topic.
func NewResponder(t Transport, hw hardware.Access, cfg Config) (*Responder, error) {
	r := &Responder{
		transport: t,
		topics:    Topics{Prefix: cfg.Prefix},
		hw:        hw,
		logger:    cfg.Logger,
	}
	hw.OnPropertyChange(r.publishEvent)
	if err := t.Subscribe(r.topics.Request(), r.handleRequest); err != nil {
		return nil, fmt.Errorf("subscribe requests: %w", err)
	}
	return r, nil
}

func (r *Responder) handleRequest(_ string, payload []byte) error {
	req, err := wire.DecodeRequest(payload)
	if err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := version.CheckPeer(req.Version); err != nil {
		r.warn("rejecting bridged batch", "correlation_id", req.CorrelationID, "error", err)
		r.fail(req, vehicle.StatusInvalidArg)
		return nil
	}
	ctx := context.Background()

	switch req.Operation {
	case vehicle.OpGetValues:
		err = r.hw.GetValues(ctx, req.Gets, func(results []vehicle.GetValueResult) {
			r.respond(&wire.HardwareResponse{CorrelationID: req.CorrelationID, Operation: req.Operation, GetResults: results})
		})
	case vehicle.OpSetValues:
		err = r.hw.SetValues(ctx, req.Sets, func(results []vehicle.SetValueResult) {
			r.respond(&wire.HardwareResponse{CorrelationID: req.CorrelationID, Operation: req.Operation, SetResults: results})
		})
	}
	if err != nil {
		r.warn("hardware rejected bridged batch", "correlation_id", req.CorrelationID, "error", err)
		r.fail(req, vehicle.StatusInternalError)
	}
	return nil
}

// fail answers every request of req with status.
func (r *Responder) fail(req *wire.HardwareRequest, status vehicle.StatusCode) {
	resp := &wire.HardwareResponse{CorrelationID: req.CorrelationID, Operation: req.Operation}
	for _, g := range req.Gets {
		resp.GetResults = append(resp.GetResults, vehicle.GetValueResult{RequestID: g.RequestID, Status: status})
	}
	for _, s := range req.Sets {
		resp.SetResults = append(resp.SetResults, vehicle.SetValueResult{RequestID: s.RequestID, Status: status})
	}
	r.respond(resp)
}

func (r *Responder) respond(resp *wire.HardwareResponse) {
	data, err := wire.EncodeResponse(resp)
	if err != nil {
		r.warn("encode response failed", "correlation_id", resp.CorrelationID, "error", err)
		return
	}
	if err := r.transport.Publish(r.topics.Response(), data); err != nil {
		r.warn("publish response failed", "correlation_id", resp.CorrelationID, "error", err)
	}
}

func (r *Responder) publishEvent(values []vehicle.PropertyValue) {
	data, err := wire.EncodeEvent(&wire.EventFrame{Values: values})
	if err != nil {
		r.warn("encode event failed", "error", err)
		return
	}
	if err := r.transport.Publish(r.topics.Event(), data); err != nil {
		r.warn("publish event failed", "error", err)
	}
}

func (r *Responder) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
