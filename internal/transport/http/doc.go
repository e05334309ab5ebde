// Package http implements the HTTP handlers of the orders dashboard API.
// Handlers stay thin: they parse and validate requests, delegate to the
// services package and render responses. Every failure goes through
// errors.ErrorHandler and reaches the client as an RFC 7807 problem.
//
// Routes mounted by the app package:
//
//	GET  /api/health                    liveness with runtime info
//	GET  /api/health/ready              source files and dataset registry
//	GET  /api/version                   build information
//	GET  /api/sources                   workbooks next to the configured primary source
//	POST /api/datasets                  multipart upload of primary and secondary
//	POST /api/datasets/{id}/report      filtered report as JSON
//	POST /api/datasets/{id}/export      filtered table as csv or xlsx attachment
//
// The dataset ID "default" reads the source files named in the configuration.
package http
