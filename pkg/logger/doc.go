// Package logger builds *slog.Logger values with a small set of functional
// options and provides attribute helpers that keep key names consistent
// across packages.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "searchd"),
//	    logger.WithAttr(slog.String("region", "eu-west-1")),
//	)
//	log.Info("client ready", logger.Nodes(addrs), logger.Duration(time.Since(start)))
//
// Config carries the same settings with env tags (LOG_LEVEL, LOG_FORMAT,
// APP_ENV, APP_NAME) for use with pkg/config; NewFromConfig turns it into a
// logger.
//
// Error and Errors produce attributes only for non-nil errors, so
//
//	log.Info("stopped", logger.Error(err))
//
// needs no nil check. Discard returns a logger for components that were not
// given one.
package logger
