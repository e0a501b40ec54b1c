package campaign

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Audit event types.
const (
	EventSession        = "session"
	EventAuthentication = "authentication"
	EventDiscovery      = "discovery"
	EventInvoke         = "invoke"
	EventCampaignPost   = "campaign_post"
)

// Audit event subtypes.
const (
	SubtypeStart    = "start"
	SubtypeComplete = "complete"
	SubtypeFailed   = "failed"
	SubtypeSkipped  = "skipped"
	SubtypeRejected = "rejected"
)

// Audit event outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeDenied  = "denied"
	OutcomePartial = "partial"
)

// Audit event severities.
const (
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityError   = "ERROR"
)

// Event is one structured audit record of a provisioning run.
type Event struct {
	Timestamp string `json:"timestamp"` // ISO 8601 UTC
	EventType string `json:"event_type"`
	Subtype   string `json:"subtype"`
	Severity  string `json:"severity"`

	User          string `json:"user,omitempty"`
	Source        string `json:"source"`
	Target        string `json:"target"`
	CorrelationID string `json:"correlation_id"`

	Outcome string         `json:"outcome"`
	Details map[string]any `json:"details,omitempty"`
}

// String returns the JSON representation of the event.
func (e *Event) String() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// EventLogger writes audit events for one run.
type EventLogger struct {
	logger        *slog.Logger
	user          string
	target        string
	correlationID string
	now           func() time.Time
}

// NewEventLogger creates an event logger for the run identified by runID.
func NewEventLogger(logger *slog.Logger, user, target, runID string) *EventLogger {
	return &EventLogger{
		logger:        logger,
		user:          user,
		target:        target,
		correlationID: runID,
		now:           time.Now,
	}
}

// Log constructs and logs an event.
func (l *EventLogger) Log(eventType, subtype, severity, outcome string, details map[string]any) {
	if l == nil || l.logger == nil {
		return
	}

	event := &Event{
		Timestamp:     l.now().UTC().Format(time.RFC3339),
		EventType:     eventType,
		Subtype:       subtype,
		Severity:      severity,
		User:          l.user,
		Source:        "go-esd",
		Target:        l.target,
		CorrelationID: l.correlationID,
		Outcome:       outcome,
		Details:       details,
	}
	if details == nil {
		event.Details = make(map[string]any)
	}

	switch severity {
	case SeverityWarning:
		l.logger.Warn("AuditEvent", "event", event)
	case SeverityError:
		l.logger.Error("AuditEvent", "event", event)
	default:
		l.logger.Info("AuditEvent", "event", event)
	}
}
