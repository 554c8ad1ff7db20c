package router

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/demo-builder/duolog/internal/sink"
)

// recordingSink captures every write so tests can assert on routing.
type recordingSink struct {
	name string

	mu       sync.Mutex
	calls    []sinkCall
	cleared  int
	disposed int
	shown    []bool
}

type sinkCall struct {
	level sink.Level
	msg   string
}

func newRecordingSink(name string) *recordingSink {
	return &recordingSink{name: name}
}

func (s *recordingSink) record(level sink.Level, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sinkCall{level, msg})
}

func (s *recordingSink) Trace(msg string) { s.record(sink.LevelTrace, msg) }
func (s *recordingSink) Debug(msg string) { s.record(sink.LevelDebug, msg) }
func (s *recordingSink) Info(msg string)  { s.record(sink.LevelInfo, msg) }
func (s *recordingSink) Warn(msg string)  { s.record(sink.LevelWarn, msg) }
func (s *recordingSink) Error(msg string) { s.record(sink.LevelError, msg) }

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Show(focus bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = append(s.shown, focus)
}

func (s *recordingSink) Hide() {}

func (s *recordingSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
}

func (s *recordingSink) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed++
	return nil
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// at returns the messages written at a given level.
func (s *recordingSink) at(level sink.Level) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.level == level {
			out = append(out, c.msg)
		}
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// newTestRouter builds a router over two recording sinks and discards the
// construction-time "initialized" lines.
func newTestRouter(t *testing.T, opts ...Option) (*Router, *recordingSink, *recordingSink) {
	t.Helper()
	user := newRecordingSink("Demo Builder: User Logs")
	diag := newRecordingSink("Demo Builder: Debug Logs")
	r := New(user, diag, opts...)
	user.reset()
	diag.reset()
	return r, user, diag
}

func TestConstructionAnnouncesBothChannels(t *testing.T) {
	user := newRecordingSink("Demo Builder: User Logs")
	diag := newRecordingSink("Demo Builder: Debug Logs")
	New(user, diag)

	if got := user.at(sink.LevelInfo); len(got) != 1 || !strings.Contains(got[0], "initialized") {
		t.Errorf("user sink init line = %v", got)
	}
	if got := diag.at(sink.LevelInfo); len(got) != 1 || !strings.Contains(got[0], "initialized") {
		t.Errorf("diag sink init line = %v", got)
	}
}

func TestUserSeveritiesReachBothSinksIdentically(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.Info("provisioning started")
	r.Warn("workspace already exists")
	r.Error("mesh deploy failed", nil)

	for _, tc := range []struct {
		level sink.Level
		want  string
	}{
		{sink.LevelInfo, "provisioning started"},
		{sink.LevelWarn, "workspace already exists"},
		{sink.LevelError, "mesh deploy failed"},
	} {
		u, d := user.at(tc.level), diag.at(tc.level)
		if len(u) != 1 || u[0] != tc.want {
			t.Errorf("user %v = %v, want [%q]", tc.level, u, tc.want)
		}
		if len(d) != 1 || d[0] != tc.want {
			t.Errorf("diag %v = %v, want [%q]", tc.level, d, tc.want)
		}
	}
}

func TestDebugAndTraceAreDiagnosticOnlyAndPromoted(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.Debug("token cache miss")
	r.Trace("raw response body")

	if n := user.count(); n != 0 {
		t.Fatalf("user sink received %d writes, want 0", n)
	}

	infos := diag.at(sink.LevelInfo)
	if len(infos) != 2 {
		t.Fatalf("diag info writes = %v, want 2 promoted lines", infos)
	}
	if infos[0] != "[debug] token cache miss" {
		t.Errorf("promoted debug = %q", infos[0])
	}
	if infos[1] != "[trace] raw response body" {
		t.Errorf("promoted trace = %q", infos[1])
	}

	// Promotion means the sink's native debug/trace methods are never used.
	if got := diag.at(sink.LevelDebug); len(got) != 0 {
		t.Errorf("diag native debug writes = %v, want none", got)
	}
	if got := diag.at(sink.LevelTrace); len(got) != 0 {
		t.Errorf("diag native trace writes = %v, want none", got)
	}
}

func TestErrorCauseDetailStaysDiagnosticOnly(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.Error("msg", errors.New("boom"))

	if got := user.at(sink.LevelError); len(got) != 1 || got[0] != "msg" {
		t.Errorf("user error writes = %v", got)
	}
	if got := diag.at(sink.LevelError); len(got) != 1 || got[0] != "msg" {
		t.Errorf("diag error writes = %v", got)
	}

	infos := diag.at(sink.LevelInfo)
	if len(infos) != 1 || !strings.Contains(infos[0], "[debug] error detail: boom") {
		t.Errorf("diag detail writes = %v", infos)
	}
	if n := user.count(); n != 1 {
		t.Errorf("user sink received %d writes, want only the error line", n)
	}
}

func TestErrorWithNilCauseWritesNoDetail(t *testing.T) {
	r, _, diag := newTestRouter(t)

	r.Error("plain failure", nil)
	if got := diag.at(sink.LevelInfo); len(got) != 0 {
		t.Errorf("unexpected detail writes: %v", got)
	}
}

func TestAuxiliaryDataSerializedAsPrettyJSON(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.Debug("selected workspace", map[string]any{"id": "ws-42", "prod": true})

	infos := diag.at(sink.LevelInfo)
	if len(infos) != 2 {
		t.Fatalf("diag info writes = %v, want message + payload", infos)
	}
	payload := infos[1]
	if !strings.HasPrefix(payload, "[debug] {") {
		t.Errorf("payload not promoted JSON: %q", payload)
	}
	if !strings.Contains(payload, `"id": "ws-42"`) {
		t.Errorf("payload missing indented field: %q", payload)
	}
	if n := user.count(); n != 0 {
		t.Errorf("payload leaked to user sink")
	}
}

func TestUnserializableDataFallsBackToStringConversion(t *testing.T) {
	r, _, diag := newTestRouter(t)

	// Channels are not JSON-representable; the call must still succeed.
	r.Trace("scheduler state", make(chan int))

	infos := diag.at(sink.LevelInfo)
	if len(infos) != 2 {
		t.Fatalf("diag info writes = %v, want message + fallback payload", infos)
	}
	if !strings.HasPrefix(infos[1], "[trace] ") {
		t.Errorf("fallback payload lost promotion prefix: %q", infos[1])
	}
}

func TestErrorDetailTruncatedButMessageIsNot(t *testing.T) {
	longMsg := strings.Repeat("m", 300)
	r, user, diag := newTestRouter(t, WithTruncateLimit(100))

	r.Error(longMsg, errors.New(strings.Repeat("x", 500)))

	if got := user.at(sink.LevelError); got[0] != longMsg {
		t.Error("user-facing error message was truncated")
	}
	detail := diag.at(sink.LevelInfo)[0]
	if !strings.Contains(detail, "... (truncated)") {
		t.Errorf("detail not truncated: %d chars", len(detail))
	}
	if strings.Contains(detail, strings.Repeat("x", 200)) {
		t.Error("detail retains more than the truncation limit")
	}
}

func TestLogCommandWritesDiagnosticRecordOnly(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.LogCommand("aio app deploy", CommandResult{
		Stdout:   "deployed 3 actions",
		Stderr:   "warning: legacy runtime",
		Code:     0,
		Duration: 800 * time.Millisecond,
	})

	if n := user.count(); n != 0 {
		t.Fatalf("fast command leaked %d writes to the user sink", n)
	}

	infos := diag.at(sink.LevelInfo)
	if len(infos) != 3 {
		t.Fatalf("diag writes = %v, want header + stdout + stderr", infos)
	}
	if !strings.Contains(infos[0], `[debug] command "aio app deploy" exited 0`) {
		t.Errorf("header = %q", infos[0])
	}
	if !strings.Contains(infos[1], "[trace] stdout: deployed 3 actions") {
		t.Errorf("stdout line = %q", infos[1])
	}
	if !strings.Contains(infos[2], "[trace] stderr: warning: legacy runtime") {
		t.Errorf("stderr line = %q", infos[2])
	}
}

func TestLogCommandSkipsEmptyStreams(t *testing.T) {
	r, _, diag := newTestRouter(t)

	r.LogCommand("aio --version", CommandResult{Code: 0, Duration: 50 * time.Millisecond})

	infos := diag.at(sink.LevelInfo)
	if len(infos) != 1 {
		t.Errorf("diag writes = %v, want header only", infos)
	}
}

func TestSlowCommandWarnsTheUser(t *testing.T) {
	r, user, _ := newTestRouter(t, WithSlowCommand(3*time.Second))

	r.LogCommand("slow-cmd", CommandResult{Code: 0, Duration: 5 * time.Second})

	warns := user.at(sink.LevelWarn)
	if len(warns) != 1 || !strings.Contains(warns[0], `"slow-cmd"`) {
		t.Fatalf("user warns = %v, want one slow-command notice", warns)
	}
	// The warning is the only command signal that reaches the user.
	if n := user.count(); n != 1 {
		t.Errorf("user sink received %d writes, want 1", n)
	}
}

func TestLogEnvironmentIsDiagnosticOnlyAndSorted(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.LogEnvironment("startup", map[string]string{
		"ZZZ_TOKEN": "secret",
		"AIO_HOME":  "/home/u/.aio",
	})

	if n := user.count(); n != 0 {
		t.Fatalf("environment reached the user sink")
	}
	infos := diag.at(sink.LevelInfo)
	if len(infos) != 1 {
		t.Fatalf("diag writes = %v, want one snapshot", infos)
	}
	snap := infos[0]
	if !strings.HasPrefix(snap, "[debug] environment snapshot: startup") {
		t.Errorf("snapshot header = %q", snap)
	}
	if strings.Index(snap, "AIO_HOME") > strings.Index(snap, "ZZZ_TOKEN") {
		t.Error("environment keys not sorted")
	}
	if strings.Contains(r.Content(), "secret") {
		t.Error("environment leaked into the export buffer")
	}
}

func TestExportBufferCapturesUserFacingWritesOnly(t *testing.T) {
	r, _, _ := newTestRouter(t)

	r.Info("visible info")
	r.Warn("visible warn")
	r.Error("visible error", errors.New("hidden detail"))
	r.Debug("hidden debug")
	r.Trace("hidden trace")

	content := r.Content()
	for _, want := range []string{"visible info", "visible warn", "visible error"} {
		if !strings.Contains(content, want) {
			t.Errorf("export missing %q", want)
		}
	}
	for _, banned := range []string{"hidden debug", "hidden trace", "hidden detail"} {
		if strings.Contains(content, banned) {
			t.Errorf("export leaked %q", banned)
		}
	}
}

func TestClearEmptiesSinksAndExportBuffer(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.Info("about to vanish")
	r.Clear()

	if r.Content() != "" {
		t.Error("export buffer survived Clear")
	}
	if user.cleared != 1 || diag.cleared != 1 {
		t.Errorf("sink Clear calls = %d/%d, want 1/1", user.cleared, diag.cleared)
	}
}

func TestShowTargetsTheRightChannel(t *testing.T) {
	r, user, diag := newTestRouter(t)

	r.Show(true)
	r.ShowDiagnostics(false)

	if len(user.shown) != 1 || user.shown[0] != true {
		t.Errorf("user Show calls = %v", user.shown)
	}
	if len(diag.shown) != 1 || diag.shown[0] != false {
		t.Errorf("diag Show calls = %v", diag.shown)
	}
}

func TestDisposeReleasesBothSinks(t *testing.T) {
	r, user, diag := newTestRouter(t)

	if err := r.Dispose(); err != nil {
		t.Fatalf("Dispose error: %v", err)
	}
	if user.disposed != 1 || diag.disposed != 1 {
		t.Errorf("sink Dispose calls = %d/%d, want 1/1", user.disposed, diag.disposed)
	}
}
