// Package delivery defines how rendered report lines reach their audience.
//
// A Deliverer is opened by its constructor, checked once before any work is
// done, sent one message per report line and closed on every exit path.
// Backends translate their own failures into ErrPermission and ErrNotFound so
// the pipeline can tell an unreachable channel apart from other errors.
package delivery
