// Package logger builds log/slog loggers with environment-aware defaults,
// context attribute extraction and a small set of attribute helpers.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "api"),
//	    logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//	        id := middleware.GetReqID(ctx)
//	        return logger.RequestID(id), id != ""
//	    }),
//	)
//
//	log.ErrorContext(ctx, "failed to persist session",
//	    logger.Component("session"),
//	    logger.SessionID(sid),
//	    logger.Error(err),
//	)
//
// # Configuration
//
// Config reads APP_ENV, APP_NAME and LOG_LEVEL and is turned into a logger
// with NewFromConfig. Development uses text output at debug level; staging
// and production use JSON at info level.
package logger
