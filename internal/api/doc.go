// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts HTTP concerns to the translation and
// history services without leaking transport details into them.
package api
