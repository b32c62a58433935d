// Package validation checks request data before it reaches a service.
//
// A Shape lists {field, rule, message} tuples; rules use go-playground/validator
// tag syntax and are evaluated one field at a time. The Pipeline rejects a
// candidate with the message of its first violation and otherwise hands back
// the candidate untouched. BindAndValidate is the echo entry point used by the
// handlers.
package validation
