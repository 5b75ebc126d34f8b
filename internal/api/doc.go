// Package api serves the operational HTTP endpoints of the topology publisher.
//
// Routes:
//
//	GET /healthz        200 while the publisher session is connected, 503 otherwise
//	GET /metrics        Prometheus exposition
//	GET /api/v1/audit   recent publish attempts from the audit trail
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
