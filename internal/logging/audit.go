package logging

import (
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType defines the type of audit event
type AuditEventType string

const (
	// Pipeline events
	AuditPipelineStart      AuditEventType = "pipeline_start"
	AuditPipelineTransition AuditEventType = "pipeline_transition"
	AuditPipelineReady      AuditEventType = "pipeline_ready"
	AuditPipelineAbort      AuditEventType = "pipeline_abort"

	// Generation events
	AuditGenerationCall  AuditEventType = "generation_call"
	AuditGenerationError AuditEventType = "generation_error"

	// History events
	AuditRecordAppend AuditEventType = "record_append"
	AuditDegradation  AuditEventType = "degradation"
)

// AuditEvent is a structured audit log entry.
type AuditEvent struct {
	EventType AuditEventType
	Owner     string
	Target    string
	Action    string
	Success   bool
	Duration  time.Duration
	Error     string
	Message   string
	Fields    map[string]interface{}
}

// AuditLogger writes audit events for one category and owner.
type AuditLogger struct {
	category Category
	owner    string
}

// Audit returns an audit logger for the category.
func Audit(category Category) *AuditLogger {
	return &AuditLogger{category: category}
}

// ForOwner scopes the audit logger to an owner.
func (a *AuditLogger) ForOwner(owner string) *AuditLogger {
	return &AuditLogger{category: a.category, owner: owner}
}

// Log writes the event through the category logger. The message is always the
// event type so events can be filtered on it.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsCategoryEnabled(a.category) {
		return
	}
	mu.RLock()
	logger := base
	mu.RUnlock()
	if logger == nil {
		return
	}

	owner := event.Owner
	if owner == "" {
		owner = a.owner
	}
	fields := []zap.Field{
		zap.String("category", string(a.category)),
		zap.String("owner", owner),
		zap.Bool("success", event.Success),
	}
	if event.Target != "" {
		fields = append(fields, zap.String("target", event.Target))
	}
	if event.Action != "" {
		fields = append(fields, zap.String("action", event.Action))
	}
	if event.Duration > 0 {
		fields = append(fields, zap.Int64("dur_ms", event.Duration.Milliseconds()))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	if event.Message != "" {
		fields = append(fields, zap.String("detail", event.Message))
	}
	for k, v := range event.Fields {
		fields = append(fields, zap.Any(k, v))
	}

	if event.Success {
		logger.Named("audit").Info(string(event.EventType), fields...)
	} else {
		logger.Named("audit").Warn(string(event.EventType), fields...)
	}
}

// Transition records a pipeline state change.
func (a *AuditLogger) Transition(from, to string) {
	a.Log(AuditEvent{
		EventType: AuditPipelineTransition,
		Action:    from + "->" + to,
		Success:   true,
	})
}

// Degraded records a non-fatal fallback.
func (a *AuditLogger) Degraded(target string, err error) {
	event := AuditEvent{EventType: AuditDegradation, Target: target}
	if err != nil {
		event.Error = err.Error()
	}
	a.Log(event)
}
