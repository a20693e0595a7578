package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSetLevelByName(t *testing.T) {
	New("test-a")
	GetLeveler().SetLevel("test-a", zapcore.DebugLevel)
	if got := GetLeveler().GetLevel("test-a"); got != zapcore.DebugLevel {
		t.Errorf("got %v, want debug", got)
	}
}

func TestSetAllAppliesToLaterLoggers(t *testing.T) {
	New("test-b")
	GetLeveler().SetAll(zapcore.WarnLevel)
	t.Cleanup(func() { GetLeveler().SetAll(zapcore.InfoLevel) })

	if got := GetLeveler().GetLevel("test-b"); got != zapcore.WarnLevel {
		t.Errorf("existing logger: got %v, want warn", got)
	}
	New("test-c")
	if got := GetLeveler().GetLevel("test-c"); got != zapcore.WarnLevel {
		t.Errorf("new logger: got %v, want warn", got)
	}
}

func TestGetLevelUnknownDefaultsToInfo(t *testing.T) {
	if got := GetLeveler().GetLevel("never-created"); got != zapcore.InfoLevel {
		t.Errorf("got %v, want info", got)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("debug"); err != nil || l != zapcore.DebugLevel {
		t.Errorf("debug: got %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
