// Package domain contains the core business entities of the task tracker:
// users and their roles, tasks, comments and due-date notifications, along
// with the validation rules and error kinds shared by every layer above it.
// It has no knowledge of storage or transport.
package domain
