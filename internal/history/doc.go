// Package history persists analysis outcomes as JSON lines so repeated
// runs against the same site can be compared over time.
package history
