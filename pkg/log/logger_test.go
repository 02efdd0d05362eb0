package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	sdmerrors "github.com/ecospace/sdmgo/pkg/errors"
)

func TestToLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		if got := ToLogLevel(name); got != want {
			t.Errorf("ToLogLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	err := sdmerrors.NewInvalidFoldCountError(1, 5)
	logger.LogAttrs(context.Background(), slog.LevelError, "partition failed", ErrAttr(err))

	var record map[string]any
	if jerr := json.Unmarshal(buf.Bytes(), &record); jerr != nil {
		t.Fatalf("invalid JSON log line: %v", jerr)
	}
	if _, ok := record[StacktraceAttrKey]; !ok {
		t.Errorf("log line missing %q attribute: %s", StacktraceAttrKey, buf.String())
	}
}

func TestWarnBridgeEmitsStructuredWarning(t *testing.T) {
	var buf bytes.Buffer
	InitWarnBridge(&buf)
	defer sdmerrors.SetZerologWarnFunc(nil)

	sdmerrors.Warn(sdmerrors.NewUndefinedMetricWarning("specificity", "no observed negatives", 0))

	line := buf.String()
	if !strings.Contains(line, `"metric":"specificity"`) {
		t.Errorf("bridge output missing structured fields: %s", line)
	}
	if !strings.Contains(line, `"level":"warn"`) {
		t.Errorf("bridge output missing level: %s", line)
	}
}
