// Package logging provides opt-in file-based logging with rotation for Indexify.
// When the --debug flag is set, structured JSON logs (including one event per
// contributor the engine applies or skips) are written to ~/.indexify/logs/.
//
// Without --debug, only warnings and errors reach stderr as text, so that
// composed requests written to stdout stay machine-readable.
package logging
