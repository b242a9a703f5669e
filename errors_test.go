package hostcore

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogErrorHandler(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := LogErrorHandler{Logger: zap.New(core)}

	h.HandleError(errors.New("stream close failed"))

	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if logs.All()[0].Message != "engine fault" {
		t.Errorf("message = %q, want %q", logs.All()[0].Message, "engine fault")
	}
}

func TestLogErrorHandlerNilLogger(t *testing.T) {
	var h LogErrorHandler
	h.HandleError(errors.New("ignored")) // must not panic
}

func TestPanicErrorHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PanicErrorHandler should panic")
		}
	}()
	PanicErrorHandler{}.HandleError(errors.New("boom"))
}
