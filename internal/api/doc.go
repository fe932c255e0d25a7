// Package api exposes the analyzer over a small REST surface. Every
// response is wrapped in a JSON envelope carrying either data or a coded
// error, plus the request ID for correlation with the server logs.
package api
