// Package app wires the orders dashboard server together: telemetry,
// the source cache, the reconciliation pipeline, the report and health
// services, middleware and routes.
//
// # Initialization Flow
//
//  1. The caller loads configuration and the logger (cmd/ordersdash)
//  2. OpenTelemetry providers and pipeline metrics are created
//  3. Services are constructed with their dependencies
//  4. The chi router is assembled and the HTTP server created
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	return application.Run(ctx)
//
// Run returns after the context is cancelled and in-flight requests have
// drained, or when the listener fails. The app never calls os.Exit.
package app
