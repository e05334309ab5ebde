// Package services implements the business logic between the HTTP and CLI
// surfaces and the reconciliation pipeline.
//
// ReportService owns the registered datasets. A dataset is a pair of
// sources, either the configured files (DefaultDatasetID) or an upload.
// Every report request reloads the raw tables through SourceCache, runs the
// pipeline, then filters, selects columns and computes KPIs:
//
//	cache, _ := services.NewSourceCache(cfg.Sources.CacheEntries, metrics, logger)
//	svc, _ := services.NewReportService(cfg, dataprocessing.NewPipeline(logger), cache, logger)
//	report, err := svc.BuildReport(ctx, services.DefaultDatasetID, domain.ReportRequest{
//	    Filters: map[string][]string{"Region": {"North"}},
//	})
//
// SourceCache keys files by path, size and modification time and uploads by
// content hash, so an edited file is read again while repeated requests on
// unchanged sources skip parsing. Concurrent loads of one source share a
// single read.
//
// HealthService reports liveness, readiness of the configured sources and
// build information.
package services
