package campaign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/smnsjas/go-esd/esdapi"
)

// protocol is the server surface the orchestrator drives; *esdapi.Session
// implements it.
type protocol interface {
	DiscoverDescription(ctx context.Context, domain string) (*esdapi.ServiceDescription, error)
	RetireCampaignSOAP(ctx context.Context, desc *esdapi.ServiceDescription, flexeraID string) (*esdapi.RetireCampaignResult, error)
	RetireCampaignREST(ctx context.Context, domain, flexeraID, groupID string) (*esdapi.CampaignResponse, error)
}

// Orchestrator provisions retire campaigns over both protocols of one
// ESD server session.
type Orchestrator struct {
	api      protocol
	session  *esdapi.Session
	logger   *slog.Logger
	user     string
	parallel bool
}

// New creates an Orchestrator and its session.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	session := esdapi.NewSession(esdapi.SessionConfig{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Domain:    cfg.Domain,
		Proxies:   cfg.Proxies,
		VerifyTLS: cfg.VerifyTLS,
		TLSConfig: cfg.TLSConfig,
		Timeout:   cfg.Timeout,
		Logger:    logger,
	})

	return &Orchestrator{
		api:      session,
		session:  session,
		logger:   logger,
		user:     cfg.Username,
		parallel: cfg.Parallel,
	}, nil
}

// Close releases the session's idle connections.
func (o *Orchestrator) Close() {
	if o.session != nil {
		o.session.Close()
	}
}

// Run creates an Orchestrator for cfg, provisions req and discards the
// session.
func Run(ctx context.Context, cfg Config, req Request) (*Outcome, error) {
	o, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defer o.Close()
	return o.Provision(ctx, req)
}

// Provision runs discovery and the SOAP call, then the REST call, and
// returns both results. Step failures never abort the run: they are logged
// and recorded in the Outcome. The returned error is non-nil only when req
// is invalid.
//
// A transport failure during discovery skips the SOAP call. A non-2xx
// discovery response still attempts it; the XML slot then carries the
// DiscoveryError joined with the resulting InvokeError. The REST call is
// always attempted.
func (o *Orchestrator) Provision(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	runID := uuid.New().String()
	logger := o.logger.With("run_id", runID, "flexera_id", req.FlexeraID)
	events := NewEventLogger(o.logger, o.user, req.Domain, runID)

	out := &Outcome{RunID: runID, Request: req}

	events.Log(EventSession, SubtypeStart, SeverityInfo, OutcomeSuccess, map[string]any{
		"flexera_id": req.FlexeraID,
		"group_id":   req.GroupID,
		"parallel":   o.parallel,
	})
	logger.Debug("provisioning started", "domain", req.Domain, "group_id", req.GroupID)

	if o.parallel {
		var g errgroup.Group
		g.Go(func() error {
			out.XML = o.xmlPath(ctx, req, logger, events)
			return nil
		})
		g.Go(func() error {
			out.JSON = o.jsonStep(ctx, req, logger, events)
			return nil
		})
		_ = g.Wait()
	} else {
		out.XML = o.xmlPath(ctx, req, logger, events)
		out.JSON = o.jsonStep(ctx, req, logger, events)
	}

	severity, outcome := SeverityInfo, OutcomeSuccess
	switch {
	case out.Partial():
		severity, outcome = SeverityWarning, OutcomePartial
	case !out.Complete():
		severity, outcome = SeverityError, OutcomeFailure
	}
	events.Log(EventSession, SubtypeComplete, severity, outcome, map[string]any{
		"xml":  out.XML.Kind.String(),
		"json": out.JSON.Kind.String(),
	})

	return out, nil
}

// xmlPath runs discovery followed by the SOAP call.
func (o *Orchestrator) xmlPath(ctx context.Context, req Request, logger *slog.Logger, events *EventLogger) Result[*esdapi.RetireCampaignResult] {
	start := time.Now()
	logger = logger.With("step", "xml")

	desc, discErr := o.api.DiscoverDescription(ctx, req.Domain)
	if discErr != nil {
		logFailure(logger, "service description discovery failed", discErr)
		auditFailure(events, EventDiscovery, discErr)

		if esdapi.IsTransport(discErr) {
			events.Log(EventInvoke, SubtypeSkipped, SeverityWarning, OutcomeFailure, map[string]any{
				"reason": "discovery transport failure",
			})
			return failed[*esdapi.RetireCampaignResult](discErr, time.Since(start))
		}
	} else {
		events.Log(EventDiscovery, SubtypeComplete, SeverityInfo, OutcomeSuccess, map[string]any{
			"url":   desc.URL,
			"bytes": len(desc.Raw),
		})
	}

	res, err := o.api.RetireCampaignSOAP(ctx, desc, req.FlexeraID)
	if err != nil {
		if discErr != nil {
			err = errors.Join(discErr, err)
		} else {
			logFailure(logger, "soap invocation failed", err)
		}
		auditFailure(events, EventInvoke, err)
		return failed[*esdapi.RetireCampaignResult](err, time.Since(start))
	}

	logger.Debug("soap invocation succeeded", "operation", esdapi.RetireOperation, "response", res.String())
	events.Log(EventInvoke, SubtypeComplete, SeverityInfo, OutcomeSuccess, map[string]any{
		"operation": esdapi.RetireOperation,
	})
	return succeeded(res, time.Since(start))
}

// jsonStep runs the REST call.
func (o *Orchestrator) jsonStep(ctx context.Context, req Request, logger *slog.Logger, events *EventLogger) Result[*esdapi.CampaignResponse] {
	start := time.Now()
	logger = logger.With("step", "json")

	resp, err := o.api.RetireCampaignREST(ctx, req.Domain, req.FlexeraID, req.GroupID)
	if err != nil {
		logFailure(logger, "campaign post failed", err)
		auditFailure(events, EventCampaignPost, err)
		return failed[*esdapi.CampaignResponse](err, time.Since(start))
	}

	logger.Debug("campaign post succeeded", "status", resp.StatusCode, "body", resp.Body)
	events.Log(EventCampaignPost, SubtypeComplete, SeverityInfo, OutcomeSuccess, map[string]any{
		"status": resp.StatusCode,
	})
	return succeeded(resp, time.Since(start))
}

// logFailure logs err with the status, headers and bodies it carries.
func logFailure(logger *slog.Logger, msg string, err error) {
	attrs := []any{"error", err, "kind", esdapi.Classify(err).String()}

	var he *esdapi.HTTPStatusError
	if errors.As(err, &he) {
		attrs = append(attrs,
			"status", he.StatusCode,
			"method", he.Method,
			"url", he.URL,
			"headers", headerMap(he.Header),
			"body", string(he.Body),
			"request_body", string(he.RequestBody))
	}
	var te *esdapi.TransportError
	if errors.As(err, &te) {
		attrs = append(attrs, "url", te.URL, "cause", te.Err.Error(), "timeout", te.Timeout())
	}

	logger.Error(msg, attrs...)
}

// auditFailure records a failed step, marking rejected credentials as an
// authentication event.
func auditFailure(events *EventLogger, eventType string, err error) {
	details := map[string]any{"kind": esdapi.Classify(err).String()}

	var he *esdapi.HTTPStatusError
	if errors.As(err, &he) {
		details["status"] = he.StatusCode
	}
	if errors.Is(err, esdapi.ErrUnauthorized) {
		events.Log(EventAuthentication, SubtypeRejected, SeverityError, OutcomeDenied, details)
	}
	events.Log(eventType, SubtypeFailed, SeverityError, OutcomeFailure, details)
}

func headerMap(h http.Header) map[string]string {
	m := make(map[string]string, len(h))
	for k := range h {
		m[k] = h.Get(k)
	}
	return m
}
