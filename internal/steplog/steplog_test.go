package steplog

import (
	"strings"
	"sync"
	"testing"

	"github.com/demo-builder/duolog/internal/sink"
)

// fakeRouter records delegated writes by level.
type fakeRouter struct {
	mu    sync.Mutex
	calls map[sink.Level][]string
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{calls: make(map[sink.Level][]string)}
}

func (f *fakeRouter) record(level sink.Level, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[level] = append(f.calls[level], msg)
}

func (f *fakeRouter) Info(msg string)               { f.record(sink.LevelInfo, msg) }
func (f *fakeRouter) Warn(msg string)               { f.record(sink.LevelWarn, msg) }
func (f *fakeRouter) Error(msg string, cause error) { f.record(sink.LevelError, msg) }
func (f *fakeRouter) Debug(msg string, data ...any) { f.record(sink.LevelDebug, msg) }
func (f *fakeRouter) Trace(msg string, data ...any) { f.record(sink.LevelTrace, msg) }

func (f *fakeRouter) at(level sink.Level) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[level]
}

var testTemplates = map[string]map[string]string{
	"auth": {
		"started":   "Signing in to Adobe...",
		"succeeded": "Signed in as {user}",
	},
	"scaffold": {
		"found": "Found {count} {item}",
	},
}

func TestStepNameUsesRegisteredTable(t *testing.T) {
	s := New(newFakeRouter(), WithSteps(map[string]string{"adobe-auth": "Adobe Sign-In"}))
	if got := s.StepName("adobe-auth"); got != "Adobe Sign-In" {
		t.Errorf("StepName = %q", got)
	}
}

func TestStepNameFallbackTitleCasesHyphenatedID(t *testing.T) {
	s := New(newFakeRouter())
	tests := map[string]string{
		"multi-word-step-id": "Multi Word Step Id",
		"my-custom-step":     "My Custom Step",
		"scaffold":           "Scaffold",
	}
	for id, want := range tests {
		if got := s.StepName(id); got != want {
			t.Errorf("StepName(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestCallerStepsOverrideConfiguredTable(t *testing.T) {
	s := New(newFakeRouter(),
		WithSteps(map[string]string{"scaffold": "Components"}),
		WithSteps(map[string]string{"scaffold": "Component Setup"}),
	)
	if got := s.StepName("scaffold"); got != "Component Setup" {
		t.Errorf("StepName = %q, want caller override", got)
	}
}

func TestRenderSubstitutesParams(t *testing.T) {
	s := New(newFakeRouter(), WithTemplates(testTemplates))
	got := s.Render("auth.succeeded", map[string]any{"user": "demo@example.com"})
	if got != "Signed in as demo@example.com" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderDeletesUnresolvedPlaceholders(t *testing.T) {
	s := New(newFakeRouter(), WithTemplates(testTemplates))
	got := s.Render("scaffold.found", map[string]any{"count": 3})
	if got != "Found 3 " {
		t.Errorf("Render = %q, want %q (placeholder deleted, not literal)", got, "Found 3 ")
	}
}

func TestRenderFindsBareKeyAcrossSections(t *testing.T) {
	s := New(newFakeRouter(), WithTemplates(testTemplates))
	got := s.Render("started", nil)
	if got != "Signing in to Adobe..." {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderUnknownKeyFallsBackWithDiagnosticNote(t *testing.T) {
	rt := newFakeRouter()
	s := New(rt, WithTemplates(testTemplates))

	got := s.Render("mesh_deploy_started", nil)
	if got != "Mesh deploy started" {
		t.Errorf("Render = %q, want capitalized key fallback", got)
	}

	debugs := rt.at(sink.LevelDebug)
	if len(debugs) != 1 || !strings.Contains(debugs[0], "mesh_deploy_started") {
		t.Errorf("missing-template note = %v", debugs)
	}
}

func TestLogPrefixesWithStepName(t *testing.T) {
	rt := newFakeRouter()
	s := New(rt,
		WithSteps(map[string]string{"adobe-auth": "Adobe Sign-In"}),
		WithTemplates(testTemplates),
	)

	s.Log("adobe-auth", "auth.started", nil)

	infos := rt.at(sink.LevelInfo)
	if len(infos) != 1 || infos[0] != "[Adobe Sign-In] Signing in to Adobe..." {
		t.Errorf("delegated writes = %v", infos)
	}
}

func TestLogAtRoutesToRequestedLevel(t *testing.T) {
	rt := newFakeRouter()
	s := New(rt, WithTemplates(testTemplates))

	s.LogAt(sink.LevelWarn, "select-org", "started", nil)
	s.LogAt(sink.LevelError, "select-org", "started", nil)
	s.LogAt(sink.LevelTrace, "select-org", "started", nil)

	for _, level := range []sink.Level{sink.LevelWarn, sink.LevelError, sink.LevelTrace} {
		if got := rt.at(level); len(got) != 1 {
			t.Errorf("level %v writes = %v, want 1", level, got)
		}
	}
	if got := rt.at(sink.LevelInfo); len(got) != 0 {
		t.Errorf("unexpected info writes: %v", got)
	}
}
