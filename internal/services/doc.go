// Package services sits between the HTTP handlers and the result store.
// RunService translates API-level filter parameters into store ListOptions
// and keeps pagination math out of the handlers.
package services
