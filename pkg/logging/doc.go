// Package logging builds the structured loggers used across recordsd.
//
// It wraps log/slog so that every component is configured the same way from
// the log section of the configuration file or the --log-level and
// --log-format flags.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("query served", "collection", "people", "count", 3)
//
// Components accept a *slog.Logger through an option or setter and fall back
// to Nop() when none is given. Component() tags a logger with the name of the
// subsystem that owns it.
package logging
