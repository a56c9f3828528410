// Package logging builds slog loggers with the console and JSON handlers used
// across the service. The console handler renders compact key=value lines and
// promotes the component attribute into the message prefix.
package logging
