// Package store defines the persistence interfaces for the drill API's
// domain entities, along with common error types and transaction helpers.
// Concrete implementations live under internal/platform.
package store
