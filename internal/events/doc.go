// Package events carries domain events from services to interested handlers.
//
// Services publish an Event through an Emitter after a use case commits.
// Handlers are registered at startup; the in-memory emitter dispatches
// synchronously and keeps going when a handler fails. AuditLogHandler
// writes every event to the structured log.
package events
