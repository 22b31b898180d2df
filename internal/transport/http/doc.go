// Package http implements the HTTP handlers of the order payments service.
// Handlers stay thin: they parse the request, call a service and render the
// result, leaving business rules to internal/services.
//
// # Routes
//
//	POST /api/upload-order-file        multipart field "file", .xlsx only
//	GET  /api/order-payments/summary   summary report, optional overrides
//	GET  /api/order-payments/files     stored workbooks
//	GET  /api/health[/ready|/live]     health checks
//	GET  /api/version                  build information
//	GET  /metrics                      Prometheus scrape endpoint
//
// The summary accepts mode, from, to, selection, schema, cost_of_goods_sold,
// gst_payable, tds and other_charges as query parameters. Unset parameters
// fall back to the report configuration.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/input/schema",
//	    "title": "Invalid Input Schema",
//	    "status": 422,
//	    "detail": "order payments sheet does not match schema v1, missing columns: Claims",
//	    "instance": "/api/order-payments/summary",
//	    "error_code": "INPUT_SCHEMA",
//	    "missing_columns": ["Claims"]
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of the service.
package http
