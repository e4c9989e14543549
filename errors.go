/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"log"
	"net/http"
	"time"
)

var (
	ErrMissingField             = errors.New("missing field")
	ErrPlayerNotFound           = errors.New("player not found")
	ErrInvalidAssignmentsFormat = errors.New("invalid assignments format")
	ErrUnauthorized             = errors.New("unauthorized")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// statusFor picks the response status for an error returned by the game.
// Anything unrecognised is a server fault, typically a storage failure.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrMissingField):
		return http.StatusBadRequest
	case errors.Is(err, ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
