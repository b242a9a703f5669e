package hostcore

import (
	"fmt"

	"go.uber.org/zap"
)

// ErrorHandler receives faults that occur outside a control-path call, such
// as a stream close failure during teardown or an error surfaced by a
// backend after Start has already returned.
type ErrorHandler interface {
	HandleError(error)
}

// LogErrorHandler reports every fault through a zap logger.
type LogErrorHandler struct {
	Logger *zap.Logger
}

// HandleError implements ErrorHandler.
func (h LogErrorHandler) HandleError(err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.Error("engine fault", zap.Error(err))
}

// PanicErrorHandler panics on any fault (useful in tests and development).
type PanicErrorHandler struct{}

// HandleError implements ErrorHandler.
func (PanicErrorHandler) HandleError(err error) {
	panic(fmt.Sprintf("engine fault: %v", err))
}
