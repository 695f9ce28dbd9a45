// Package diagnostic provides structured warnings, errors, and
// "why this was emitted" explanations for the serializer generator.
//
// Key capabilities:
//   - Skipped member notices
//   - Directive conflict reports
//   - Missing handler and binding errors with the offending triple
package diagnostic
