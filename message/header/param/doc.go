// Package param handles parameterized header bodies such as those found in
// the Content-type and Content-disposition headers. Split() and Format() work
// on raw strings. Value wraps the result with helpers for media types.
package param
