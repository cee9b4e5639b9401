package logger

import (
	"strings"

	"go.uber.org/fx/fxevent"
)

// FxLoggerAdapter implements fxevent.Logger on top of the leveled logger.
// Container plumbing is logged at DEBUG; only failures surface at ERROR.
type FxLoggerAdapter struct{}

// NewFxLoggerAdapter returns the fx event logger.
func NewFxLoggerAdapter() fxevent.Logger {
	return &FxLoggerAdapter{}
}

// LogEvent logs a single fx event.
func (l *FxLoggerAdapter) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			Errorf("OnStart hook failed: %s, error: %v", shortFuncName(e.FunctionName), e.Err)
		} else {
			Debugf("OnStart hook executed: %s (%s)", shortFuncName(e.FunctionName), e.Runtime)
		}
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			Errorf("OnStop hook failed: %s, error: %v", shortFuncName(e.FunctionName), e.Err)
		} else {
			Debugf("OnStop hook executed: %s", shortFuncName(e.FunctionName))
		}
	case *fxevent.Supplied:
		if e.Err != nil {
			Errorf("Supplied failed: %v", e.Err)
		}
	case *fxevent.Provided:
		if e.Err != nil {
			Errorf("Provide error: %v", e.Err)
			return
		}
		for _, rtype := range e.OutputTypeNames {
			Debugf("Provided: %s", rtype)
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			Errorf("Invoke failed: %s, error: %v", e.FunctionName, e.Err)
		}
	case *fxevent.Stopping:
		Debugf("Stopping on signal: %s", e.Signal)
	case *fxevent.RollingBack:
		Errorf("Start failed, rolling back: %v", e.StartErr)
	case *fxevent.RolledBack:
		if e.Err != nil {
			Errorf("Rollback failed: %v", e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			Errorf("Start failed: %v", e.Err)
		} else {
			Debugf("Application started.")
		}
	case *fxevent.LoggerInitialized:
		if e.Err != nil {
			Errorf("Logger initialization failed: %v", e.Err)
		}
	}
}

// shortFuncName strips the anonymous closure suffix fx reports (".func1").
func shortFuncName(funcName string) string {
	if idx := strings.LastIndex(funcName, ".func"); idx != -1 {
		return funcName[:idx]
	}
	return funcName
}
