// Package duolog provides a dual-channel diagnostic logging core: one
// user-facing channel for clean, pre-formatted text, and one diagnostic
// channel for the technical detail (stack traces, JSON payloads, command
// output) that support needs and end users should never see.
//
// Quick start:
//
//	log, err := duolog.Init()
//	if err != nil {
//	    panic(err)
//	}
//	defer log.Dispose()
//
//	log.Info("Project created")             // both channels + export buffer
//	log.Debug("token refresh", payload)     // diagnostic channel only
//	log.Error("Deploy failed", err)         // detail stays diagnostic-only
//
// Debug and trace writes are promoted through the diagnostic channel's
// info-level write with a literal "[debug] "/"[trace] " tag, so
// host-side severity filtering cannot suppress them. Info, warn and
// error lines additionally land in a bounded export buffer surfaced via
// GetLogContent and ExportToFile; ReplayLogsFromFile reads a prior
// session's export back in, restricted to files under ~/.demo-builder.
package duolog
