// Package errors provides the classified error primitives used across docsite.
//
// A ClassifiedError carries a category (not_found, config, docs, ...), a
// severity and a retry hint together with structured context. The HTTP and
// CLI adapters turn a classified error into a status code / exit code and a
// user-facing payload.
//
// Example usage:
//
//	err := errors.NotFoundError("page not found").
//		WithContext("slug", s.Key()).
//		Build()
package errors
