// Package errors provides structured error types for the asm-go library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, the offending
// input with a byte offset, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidDescriptor).
//		Input("(IJ").
//		Offset(3).
//		Detail("unterminated argument list").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidDescriptor("(IJ", 3, "unterminated argument list")
//	err := errors.PoolOverflow(65536)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under errors.Is when their Phase and Kind agree,
// which lets callers classify failures without string matching:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidDescriptor}) {
//		// report diagnostic with source context
//	}
package errors
