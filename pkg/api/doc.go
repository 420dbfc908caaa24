// Package api exposes the enclosure pipeline over HTTP.
//
// # Endpoints
//
//	POST   /v1/calculate         size a box, optionally render and save it
//	POST   /v1/layout            DXF (or another format) for explicit dimensions
//	POST   /v1/extract           Thiele-Small parameters from datasheet text
//	GET    /v1/calculations      saved calculations, newest first
//	POST   /v1/calculations      save a calculation
//	GET    /v1/calculations/{id} one saved calculation
//	DELETE /v1/calculations/{id} delete a saved calculation
//	GET    /healthz              liveness and build info
//
// Request and response bodies are JSON except for /v1/layout, which
// returns the rendered file. Errors are returned as
//
//	{"code": "INFEASIBLE_DESIGN", "message": "..."}
//
// with an HTTP status derived from the code (see [StatusFor]).
package api
