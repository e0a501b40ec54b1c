package campaign

import (
	"fmt"
	"time"

	"github.com/smnsjas/go-esd/esdapi"
)

// Result is the outcome of one protocol step: a value on success, or an
// error and its classification on failure.
type Result[T any] struct {
	Value    T
	Err      error
	Kind     esdapi.FailureKind
	Duration time.Duration
}

func succeeded[T any](v T, d time.Duration) Result[T] {
	return Result[T]{Value: v, Duration: d}
}

func failed[T any](err error, d time.Duration) Result[T] {
	return Result[T]{Err: err, Kind: esdapi.Classify(err), Duration: d}
}

// OK reports whether the step succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// String renders the value, or the failure kind and error.
func (r Result[T]) String() string {
	if r.Err != nil {
		return fmt.Sprintf("FAILED (%s): %v", r.Kind, r.Err)
	}
	return fmt.Sprint(r.Value)
}

// Outcome is the combined result of a provisioning run. The two slots are
// independent: inspect both to know what succeeded.
type Outcome struct {
	// RunID correlates the log lines and audit events of this run.
	RunID string

	Request Request

	// XML is the SOAP registration of the package for retirement.
	XML Result[*esdapi.RetireCampaignResult]

	// JSON is the REST association of the campaign with the group.
	JSON Result[*esdapi.CampaignResponse]
}

// Complete reports whether both steps succeeded.
func (o *Outcome) Complete() bool {
	return o.XML.OK() && o.JSON.OK()
}

// Partial reports whether exactly one step succeeded.
func (o *Outcome) Partial() bool {
	return o.XML.OK() != o.JSON.OK()
}

// Err returns nil when both steps succeeded, otherwise an error naming the
// failed steps.
func (o *Outcome) Err() error {
	switch {
	case o.Complete():
		return nil
	case o.Partial() && o.XML.OK():
		return fmt.Errorf("partial success: json step failed: %w", o.JSON.Err)
	case o.Partial():
		return fmt.Errorf("partial success: xml step failed: %w", o.XML.Err)
	default:
		return fmt.Errorf("xml step failed: %w; json step failed: %w", o.XML.Err, o.JSON.Err)
	}
}
