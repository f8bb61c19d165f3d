// Package logging provides a simple leveled logging interface for the
// media resolver.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information, including per-item resolution
//     diagnostics such as missing tags
//   - INFO: Plugin registration and general operational messages
//   - WARN: Unreadable containers and items
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable (or
// DEBUG=true), and can be overridden at runtime with SetLevel.
package logging
