// Package service contains the application use cases: task, comment,
// notification and user management plus the due-date notification sweep.
//
// Every operation takes the authenticated actor explicitly, applies the
// rules in internal/policy, and talks to persistence only through the
// interfaces in internal/store. Work that writes runs inside a
// store.Transactor unit of work.
//
// Failures are returned as *ServiceError values whose chain contains one
// of the domain error kinds (domain.ErrValidation, domain.ErrNotFound,
// domain.ErrPermission, domain.ErrConflict), so callers can classify them
// with errors.Is regardless of which layer produced them.
package service
