// Package logging builds the slog-based logger tasgo components share.
//
// The configuration's logging section picks the level (debug, info,
// warn, error), the encoding (json or text) and the destination
// (stdout or stderr):
//
//	logging:
//	  level: "info"
//	  format: "json"
//	  output: "stdout"
//
// A Logger satisfies the narrow logging interfaces the library's
// packages declare, broker.Logger among them, so one logger can be
// threaded through everything:
//
//	log := logging.New(cfg.Logging)
//	b.SetLogger(log.Component("broker"))
//
// Callers already carrying a *slog.Logger can hand that to those
// interfaces directly instead. Embedders that want the library silent
// pass Noop().
//
// Never log broker or device credentials.
package logging
