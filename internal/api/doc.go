// Package api hosts the HTTP server, middleware, and REST handlers for
// operator access. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/jobs for job submission, GET /v1/jobs/{id} and
//     /v1/jobs/{id}/result for inspection.
//   - POST /v1/batches/run to trigger a batch run.
package api
