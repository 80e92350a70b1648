// Package telemetry wraps OpenTelemetry SDK initialization for leoflow,
// exporting traces and metrics over OTLP gRPC. When telemetry is disabled
// the global providers stay noop and nothing connects out.
package telemetry
