// Package task manages the background work the training engine needs while
// sessions are running. Its main job is the session ticker, which advances
// the physiological simulation of every active stress session on a fixed
// interval without blocking HTTP request handling.
package task
