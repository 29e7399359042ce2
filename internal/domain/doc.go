// Package domain defines the core business entities of the training engine:
// lesson mastery aggregates, stress scenarios, stress training sessions, and
// per-user stress metrics. Entities validate themselves; state transitions
// live in the gating and stress sub-packages and in the service layer.
package domain
