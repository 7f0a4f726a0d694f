// Package api adapts HTTP requests onto the service layer. Handlers decode
// and validate input, take the authenticated actor from the request context,
// call a service and translate domain error kinds into status codes with
// sanitized messages.
package api
