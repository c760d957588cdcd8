// Package errors provides structured error types for the tedious library.
//
// Errors are categorized by Phase (where in decoding the error occurred) and
// Kind (error category). The Error type includes rich context: the token
// being decoded, the byte offset into the current window, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidData).
//		Token("COLMETADATA").
//		Offset(17).
//		Detail("column count exceeds limit").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownToken(0x42)
//	err := errors.UnsupportedType("ROW", "name", 0x24)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
