package plugincache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevinelliott/agentcore/pkg/coreerrors"
	"github.com/kevinelliott/agentcore/pkg/coreid"
	"github.com/kevinelliott/agentcore/pkg/events"
	"github.com/kevinelliott/agentcore/pkg/permission"
)

type fakeHub struct {
	decision permission.Decision
	err      error
	calls    []permission.Source
	mu       sync.Mutex
}

func (f *fakeHub) Request(opID coreid.ID, source permission.Source, origin *permission.Origin) (permission.Decision, error) {
	f.mu.Lock()
	f.calls = append(f.calls, source)
	f.mu.Unlock()
	return f.decision, f.err
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(name events.Name, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Event{Name: name, Payload: payload})
	return nil
}

func (r *recordingEmitter) last() (events.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return events.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

func waitForEvents(r *recordingEmitter, n int) bool {
	for i := 0; i < 100; i++ {
		r.mu.Lock()
		got := len(r.events)
		r.mu.Unlock()
		if got >= n {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestStartInstallDenied(t *testing.T) {
	cache := NewCache(t.TempDir(), nil, nil)
	hub := &fakeHub{decision: permission.Deny}
	emitter := &recordingEmitter{}
	inst := NewInstaller(cache, hub, emitter)

	opID, err := inst.StartInstall(context.Background(), "claude-code", "", nil)
	if err != nil {
		t.Fatalf("StartInstall: %v", err)
	}
	if opID == "" {
		t.Fatal("expected non-empty operation id")
	}

	if !waitForEvents(emitter, 2) {
		t.Fatal("timed out waiting for events")
	}
	last, _ := emitter.last()
	payload := last.Payload.(PluginStatusChangedEvent)
	if payload.Status != "denied" {
		t.Fatalf("status = %q, want denied", payload.Status)
	}

	if len(hub.calls) != 1 || hub.calls[0].Kind != "InstallPlugin" || hub.calls[0].PluginID != "claude-code" {
		t.Fatalf("unexpected hub calls: %+v", hub.calls)
	}
}

func TestStartInstallRejectsConcurrent(t *testing.T) {
	cache := NewCache(t.TempDir(), nil, nil)
	hub := &fakeHub{decision: permission.Deny}
	emitter := &recordingEmitter{}
	inst := NewInstaller(cache, hub, emitter)

	inst.mu.Lock()
	inst.inProgress["claude-code"] = true
	inst.mu.Unlock()

	_, err := inst.StartInstall(context.Background(), "claude-code", "", nil)
	if !errors.Is(err, coreerrors.PluginInstallInProgress) {
		t.Fatalf("want PluginInstallInProgress, got %v", err)
	}
}

func TestStartInstallRejectsInvalidPluginID(t *testing.T) {
	cache := NewCache(t.TempDir(), nil, nil)
	inst := NewInstaller(cache, &fakeHub{}, &recordingEmitter{})

	_, err := inst.StartInstall(context.Background(), "Not Valid!", "", nil)
	if !errors.Is(err, coreerrors.InvalidInput) {
		t.Fatalf("want InvalidInput, got %v", err)
	}
}

func TestStartInstallHubFailureEmitsFailed(t *testing.T) {
	cache := NewCache(t.TempDir(), nil, nil)
	hub := &fakeHub{err: errors.New("timed out")}
	emitter := &recordingEmitter{}
	inst := NewInstaller(cache, hub, emitter)

	_, err := inst.StartInstall(context.Background(), "claude-code", "", nil)
	if err != nil {
		t.Fatalf("StartInstall: %v", err)
	}

	if !waitForEvents(emitter, 2) {
		t.Fatal("timed out waiting for events")
	}
	last, _ := emitter.last()
	payload := last.Payload.(PluginStatusChangedEvent)
	if payload.Status != "failed" {
		t.Fatalf("status = %q, want failed", payload.Status)
	}
}
