package campaign

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/smnsjas/go-esd/esdapi"
)

// fakeProtocol records calls and returns canned results.
type fakeProtocol struct {
	mu    sync.Mutex
	calls []string
	descs []*esdapi.ServiceDescription

	discover func() (*esdapi.ServiceDescription, error)
	soap     func() (*esdapi.RetireCampaignResult, error)
	rest     func() (*esdapi.CampaignResponse, error)
}

func (f *fakeProtocol) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProtocol) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProtocol) DiscoverDescription(_ context.Context, _ string) (*esdapi.ServiceDescription, error) {
	f.record("discover")
	if f.discover != nil {
		return f.discover()
	}
	return &esdapi.ServiceDescription{URL: "https://esd.example.com/esd/ws/integration.asmx?WSDL", Raw: []byte("<definitions/>")}, nil
}

func (f *fakeProtocol) RetireCampaignSOAP(_ context.Context, desc *esdapi.ServiceDescription, _ string) (*esdapi.RetireCampaignResult, error) {
	f.record("soap")
	f.mu.Lock()
	f.descs = append(f.descs, desc)
	f.mu.Unlock()
	if desc == nil {
		return nil, &esdapi.InvokeError{Operation: esdapi.RetireOperation, Err: esdapi.ErrNoDescription}
	}
	if f.soap != nil {
		return f.soap()
	}
	return &esdapi.RetireCampaignResult{Raw: "<Success>true</Success>"}, nil
}

func (f *fakeProtocol) RetireCampaignREST(_ context.Context, _, _, _ string) (*esdapi.CampaignResponse, error) {
	f.record("rest")
	if f.rest != nil {
		return f.rest()
	}
	return &esdapi.CampaignResponse{StatusCode: 200, Body: "ok"}, nil
}

// newFakeOrchestrator wires f into an Orchestrator that logs to the
// returned buffer as JSON.
func newFakeOrchestrator(f *fakeProtocol, parallel bool) (*Orchestrator, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &Orchestrator{
		api:      f,
		logger:   logger,
		user:     "svc-esd",
		parallel: parallel,
	}, &buf
}

var scenarioRequest = Request{
	Domain:    "https://esd.example.com",
	FlexeraID: "PKG-42",
	GroupID:   "CN=Retire,OU=Groups",
}
