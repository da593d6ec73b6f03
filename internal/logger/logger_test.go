package logger

import "testing"

type recorder struct {
	messages []string
}

func (r *recorder) Debug(message string, keyvals ...any) { r.messages = append(r.messages, "debug:"+message) }
func (r *recorder) Info(message string, keyvals ...any)  { r.messages = append(r.messages, "info:"+message) }
func (r *recorder) Warn(message string, keyvals ...any)  { r.messages = append(r.messages, "warn:"+message) }
func (r *recorder) Error(message string, keyvals ...any) { r.messages = append(r.messages, "error:"+message) }
func (r *recorder) Fatal(message string, keyvals ...any) { r.messages = append(r.messages, "fatal:"+message) }

func TestDispatchesToAllInstances(t *testing.T) {
	t.Cleanup(func() { singleton = nil })

	a, b := &recorder{}, &recorder{}
	Init(a, b)

	Info("loaded", "elements", 3)
	Warn("skipped type", "type", "IfcChimney")

	for _, r := range []*recorder{a, b} {
		if len(r.messages) != 2 {
			t.Fatalf("expected 2 messages, got %v", r.messages)
		}
		if r.messages[0] != "info:loaded" || r.messages[1] != "warn:skipped type" {
			t.Errorf("unexpected messages: %v", r.messages)
		}
	}
}

func TestUninitializedIsNoop(t *testing.T) {
	singleton = nil
	// Must not panic
	Debug("x")
	Info("x")
	Warn("x")
	Error("x")
}
