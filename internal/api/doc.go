// Package api serves the chart engine over HTTP.
//
// The server is stateless: every request carries the full chart source and
// every edit returns the full new source. Hosts (editors, bots, CI jobs)
// keep the text; the server only parses, analyzes and rewrites it.
//
// # Endpoints
//
//	GET  /healthz             liveness and build version
//	GET  /v1/ops              the edit operations /v1/edit accepts
//	POST /v1/parse            {"source"} -> tasks, directives, sections, resolution
//	POST /v1/analyze          {"source", "today"?, "assignees"?, "risk"?} -> analysis
//	POST /v1/edit/{op}        {"source", "task", ...} -> {"source", "changed", "notice"}
//
// Edit bodies use the field names of pipeline.Edit. The "update" and
// "newTask" objects are validated against the same JSON schemas as patch
// files on the command line.
//
// # Errors
//
// Failures are reported as
//
//	{"error": {"code": "TASK_NOT_FOUND", "message": "...", "requestId": "..."}}
//
// with 400 for invalid input, 404 for unknown tasks, 413 for oversized
// bodies and 500 otherwise. Every response carries an X-Request-ID header.
package api
