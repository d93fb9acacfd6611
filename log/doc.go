// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are immutable values built with functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithCaller(true))
//
//	logger.Info("handler resolved", slog.String("handler", "users"))
//
// [Logger.Wrap] derives a logger with different options and [Logger.With]
// one with persistent attributes. Every level has a context-aware variant
// (for example [Logger.DebugContext]); the context-unaware variants use
// [DefaultContextProvider].
//
// The package-level functions ([Info], [Debug], ...) write through a default
// logger that [Config] reconfigures. It writes to standard error so that
// command output on standard output stays machine-readable.
//
// # Levels
//
// [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn] and [LevelError].
// Trace sits below slog's Debug and is rendered as "TRACE".
//
// # Formats
//
// [FormatText] and [FormatJSON]. With [WithPretty], text output is
// colorized and unquoted.
package log
