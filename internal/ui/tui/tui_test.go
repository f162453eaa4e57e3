package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

var testSteps = []string{"install-packages", "start-stack", "issue-certificate"}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{30 * time.Second, "30s"},
		{90 * time.Second, "1m30s"},
		{3600 * time.Second, "1h0m"},
		{3661 * time.Second, "1h1m"},
	}
	for _, tt := range tests {
		got := formatDuration(tt.d)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestProgress(t *testing.T) {
	m := NewApplyModel("local", "erp.example.com", testSteps, false)
	if p := m.Progress(); p != 0 {
		t.Errorf("expected 0, got %v", p)
	}

	m.finishStep(StepResultMsg{Step: "install-packages", Status: provisioning.StatusSkipped})
	if p := m.Progress(); p < 0.33 || p > 0.34 {
		t.Errorf("expected ~0.33, got %v", p)
	}

	m.Done = true
	if p := m.Progress(); p != 1.0 {
		t.Errorf("expected 1.0 when done, got %v", p)
	}
}

func TestModelUpdateSteps(t *testing.T) {
	m := NewApplyModel("local", "erp.example.com", testSteps, false)

	updated, _ := m.Update(StepStartedMsg{Step: "start-stack", Current: 2, Total: 3})
	m = updated.(Model)
	if !m.Steps[1].Active || m.Current != 2 {
		t.Fatalf("expected start-stack to be active at position 2, got %+v", m.Steps[1])
	}

	updated, _ = m.Update(StepResultMsg{Step: "start-stack", Status: provisioning.StatusExecuted, Reason: "services not running"})
	m = updated.(Model)
	if m.Steps[1].Active {
		t.Error("expected start-stack to not be active after result")
	}
	if m.Steps[1].Status != provisioning.StatusExecuted {
		t.Errorf("expected executed, got %s", m.Steps[1].Status)
	}

	// unknown steps are ignored
	updated, _ = m.Update(StepResultMsg{Step: "unknown", Status: provisioning.StatusFailed})
	m = updated.(Model)
	for _, row := range m.Steps {
		if row.Status == provisioning.StatusFailed {
			t.Errorf("unexpected failed row %s", row.Name)
		}
	}
}

func TestModelLogTail(t *testing.T) {
	m := NewApplyModel("local", "erp.example.com", testSteps, false)
	for i := 0; i < maxLogLines+3; i++ {
		updated, _ := m.Update(LogMsg{Line: strings.Repeat("x", i+1)})
		m = updated.(Model)
	}
	if len(m.Logs) != maxLogLines {
		t.Fatalf("expected %d log lines, got %d", maxLogLines, len(m.Logs))
	}
	if m.Logs[maxLogLines-1] != strings.Repeat("x", maxLogLines+3) {
		t.Errorf("expected newest line last, got %q", m.Logs[maxLogLines-1])
	}
}

func TestModelQuitMessages(t *testing.T) {
	m := NewApplyModel("local", "erp.example.com", testSteps, false)

	updated, cmd := m.Update(DoneMsg{Report: &provisioning.Report{}})
	if !updated.(Model).Done || cmd == nil {
		t.Error("expected DoneMsg to finish and quit")
	}

	updated, cmd = m.Update(ErrMsg{Err: errors.New("boom")})
	if updated.(Model).Err == nil || cmd == nil {
		t.Error("expected ErrMsg to record the error and quit")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Error("expected q to quit")
	}
}

func TestRenderView(t *testing.T) {
	m := NewApplyModel("10.0.0.5", "erp.example.com", testSteps, true)
	m.finishStep(StepResultMsg{Step: "install-packages", Status: provisioning.StatusSkipped, Reason: "all 7 packages installed"})
	m.finishStep(StepResultMsg{
		Step:   "issue-certificate",
		Status: provisioning.StatusFailed,
		Err:    "failed: rate limited",
		Remedy: "certbot certonly --nginx -d erp.example.com",
	})

	view := m.View()
	for _, want := range []string{
		"erpdeploy: erp.example.com (10.0.0.5) [plan]",
		"install-packages",
		"all 7 packages installed",
		"failed: rate limited",
		"fix: certbot certonly --nginx -d erp.example.com",
		"q: quit",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestObserverTranslatesEvents(t *testing.T) {
	rec := &recordingSender{}
	obs := NewObserver(rec)

	obs.Progress("start-stack", 2, 3)
	obs.Event(provisioning.Event{Type: provisioning.EventStepStarted, Step: "start-stack"})
	obs.Event(provisioning.Event{
		Type:    provisioning.EventStepFailed,
		Step:    "start-stack",
		Message: "failed: image pull failed",
		Fields:  map[string]string{"remediation": "docker compose pull"},
	})
	obs.Event(provisioning.Event{Type: provisioning.EventSequenceAborted, Message: "aborted after 2 of 3 steps"})
	obs.WithFields(map[string]string{"target": "local"}).Printf("hello %s", "world")

	if len(rec.msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d: %#v", len(rec.msgs), rec.msgs)
	}
	if msg, ok := rec.msgs[0].(StepStartedMsg); !ok || msg.Current != 2 {
		t.Errorf("expected StepStartedMsg, got %#v", rec.msgs[0])
	}
	result, ok := rec.msgs[1].(StepResultMsg)
	if !ok || result.Status != provisioning.StatusFailed || result.Remedy != "docker compose pull" {
		t.Errorf("unexpected result message %#v", rec.msgs[1])
	}
	if msg, ok := rec.msgs[2].(LogMsg); !ok || msg.Line != "aborted after 2 of 3 steps" {
		t.Errorf("expected abort log line, got %#v", rec.msgs[2])
	}
	if msg, ok := rec.msgs[3].(LogMsg); !ok || msg.Line != "hello world" {
		t.Errorf("expected printf log line, got %#v", rec.msgs[3])
	}
}
