// Package logger builds the *slog.Logger used by the imdm command and handed
// to validators through their WithLogger options.
//
// New applies functional options (format, level, output, static attributes,
// environment defaults) and wraps the slog handler with LogHandlerDecorator,
// which adds attributes pulled from the context of each record, such as the
// run id of a CLI invocation. The default logger writes text at warn level to
// stderr so that stdout stays reserved for validation results.
//
// Attribute helpers in attr.go (Error, Component, RunID, Field, Check, Path)
// keep key names consistent across packages.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextValue("run_id", runIDKey{}),
//	)
//	log.DebugContext(ctx, "sample validated", logger.Path(path), logger.Duration(elapsed))
package logger
