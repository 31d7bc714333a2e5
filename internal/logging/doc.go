// Package logging provides the Logger interface used across sinsum together
// with a zerolog-backed implementation (the default) and an adapter for the
// standard library's log.Logger.
package logging
