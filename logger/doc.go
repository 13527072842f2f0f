// Package logger provides structured logging for gopocket using zerolog.
//
// Loggers are plain values passed to the client builder and the transport
// layers; the package never writes through a process-wide global unless the
// application installs one with SetGlobalLogger.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "gopocket").WithComponent("records")
//	log.Info("record created", logger.Fields(logger.FieldCollection, "posts"))
package logger
