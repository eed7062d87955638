// Package errors provides structured, actionable error values for vfiber.
//
// Every error carries a registered code (e.g. "E001") that maps to a
// category, a short message and a longer explanation. Engine contract
// violations are raised as panics carrying an *Error so that callers can
// still match them with errors.Is:
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        if err, ok := r.(error); ok && errors.Is(err, fiber.ErrNoActiveFiber) {
//	            // hook used after its component returned
//	        }
//	    }
//	}()
//
// # Error Categories
//
//   - runtime: hook and render contract violations
//   - config: configuration loading and validation
//   - cli: command line usage errors
//
// # Formatting
//
// Format renders a multi-line, colourised description for terminals;
// FormatCompact renders a single line for logs.
package errors
