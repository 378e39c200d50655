// Package logger provides the structured logger used across slimgoose.
//
// LoggerClient wraps Uber's zap with a small API: a message, an optional error
// and any number of field maps. The *WithContext variants attach the
// OpenTelemetry trace and span ids of the active span when tracing is enabled.
//
//	log, err := logger.NewLoggerClient(logger.Config{
//	    Level:         logger.Debug,
//	    ServiceName:   "billing",
//	    EnableTracing: true,
//	})
//	if err != nil {
//	    return err
//	}
//	log.InfoWithContext(ctx, "connected", nil, map[string]interface{}{"database": "billing"})
//
// The serial, hooks, mongodb, testdb and slimgoose packages accept any value
// that has InfoWithContext, WarnWithContext and ErrorWithContext, which
// *LoggerClient does.
//
// With fx, add FXModule and provide a logger.Config. Buffered entries are
// flushed when the application stops.
package logger
