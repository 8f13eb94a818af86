package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for every outcome a handler can surface. Anything else
// coming out of the store is reported as an opaque 500.
var (
	ErrDuplicateUser   = errors.New("Email already registered")
	ErrUserNotFound    = errors.New("User not found")
	ErrInvalidPassword = errors.New("Invalid password")
	ErrMissingToken    = errors.New("Missing token")
	ErrInvalidToken    = errors.New("Invalid token")
	ErrNotFound        = errors.New("Not found")
)

// ValidationErrors maps a field name to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, v[f])
	}
	return strings.Join(msgs, "; ")
}

func notFound(kind string, id int) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
