package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIdentityExhausted indicates the AA..ZZ variant space for a base UID is used up.
	ErrIdentityExhausted = errors.New("identity space exhausted")
	// ErrIdentityCollision indicates an allocated identity already exists in the library index.
	ErrIdentityCollision = errors.New("identity collision")
	// ErrEmptyPattern indicates a tile or sequence pattern matched zero files on disk.
	ErrEmptyPattern = errors.New("empty pattern")
	// ErrMalformedPattern indicates a pattern token in a position that cannot form a valid path.
	ErrMalformedPattern = errors.New("malformed pattern")
	// ErrUnmappedReference indicates a reference with no entry in the mapping table.
	ErrUnmappedReference = errors.New("unmapped reference")
	// ErrCopyFailure indicates a file failed to copy into the library tree.
	ErrCopyFailure = errors.New("copy failure")

	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsWarning reports whether the error is advisory: the packaging pass may
// complete and surface it in the result instead of aborting.
func IsWarning(err error) bool {
	return errors.Is(err, ErrEmptyPattern) || errors.Is(err, ErrUnmappedReference)
}

// NeedsRollback reports whether the error occurred in a phase that may have
// written files into the destination tree.
func NeedsRollback(err error) bool {
	return errors.Is(err, ErrCopyFailure) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrTransient)
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
