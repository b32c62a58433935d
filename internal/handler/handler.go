// Package handler is the HTTP layer. Handlers receive a payload that has
// already passed the validation pipeline, call one service method and
// return the value placed in the response envelope.
package handler
