package translation

import (
	"context"
	"errors"
	"net"
	"os"
	"regexp"
	"syscall"

	"github.com/hanseo/rosetta-api/internal/domain"
)

// Message pattern families, checked in priority order
// timeout > memory > network > model. The first family with a match wins.
var (
	timeoutPatterns = compilePatterns(
		`timed? ?out`,
		`timeout`,
		`deadline exceeded`,
	)

	memoryPatterns = compilePatterns(
		`out of memory`,
		`OOM`,
		`CUDA out of memory`,
		`MPS out of memory`,
		`cannot allocate`,
		`allocation failed`,
	)

	networkPatterns = compilePatterns(
		`connection`,
		`network`,
		`socket`,
		`connection refused`,
		`connection reset`,
		`no such host`,
		`broken pipe`,
	)

	modelPatterns = compilePatterns(
		`model not loaded`,
		`model.*not.*initialized`,
		`failed to load.*model`,
		`model.*failed`,
	)
)

func compilePatterns(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

func matchesAny(patterns []*regexp.Regexp, message string) bool {
	for _, p := range patterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// Classify maps a raw failure to a structured TranslationError.
// It is deterministic and idempotent: classifying an already classified
// error returns it unchanged.
func Classify(err error) *TranslationError {
	if err == nil {
		return nil
	}

	// Already classified, pass through untouched.
	var terr *TranslationError
	if errors.As(err, &terr) {
		return terr
	}

	return newError(determineKind(err, err.Error()), err.Error(), err)
}

// ClassifyMessage classifies a failure known only by its message string,
// for failures that cross a boundary where the error value itself is lost.
func ClassifyMessage(message string) *TranslationError {
	return newError(determineKindFromMessage(message), message, nil)
}

// NewTimeoutError synthesizes the error used when an attempt exceeds its
// deadline without the translator returning at all.
func NewTimeoutError() *TranslationError {
	return newError(ErrorKindTimeout, "translation timed out", context.DeadlineExceeded)
}

// determineKind decides the kind for err, checking typed errors before
// falling back to message patterns.
func determineKind(err error, message string) ErrorKind {
	// Domain validation failures are tagged by sentinel and never retried.
	if errors.Is(err, domain.ErrEmptyText) ||
		errors.Is(err, domain.ErrTextTooLong) ||
		errors.Is(err, domain.ErrUnsupportedLanguage) ||
		errors.Is(err, domain.ErrInvalidTargetAuto) ||
		errors.Is(err, domain.ErrValidation) {
		return ErrorKindValidation
	}

	if errors.Is(err, ErrOutOfMemory) || errors.Is(err, syscall.ENOMEM) {
		return ErrorKindMemory
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrorKindTimeout
	}

	// Connection and OS-level errors: timeout indicators take precedence
	// over the generic network classification.
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() || matchesAny(timeoutPatterns, message) {
			return ErrorKindTimeout
		}
		return ErrorKindNetwork
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		if matchesAny(timeoutPatterns, message) {
			return ErrorKindTimeout
		}
		return ErrorKindNetwork
	}

	return determineKindFromMessage(message)
}

// determineKindFromMessage matches the message against the pattern
// families in priority order.
func determineKindFromMessage(message string) ErrorKind {
	switch {
	case matchesAny(timeoutPatterns, message):
		return ErrorKindTimeout
	case matchesAny(memoryPatterns, message):
		return ErrorKindMemory
	case matchesAny(networkPatterns, message):
		return ErrorKindNetwork
	case matchesAny(modelPatterns, message):
		return ErrorKindModel
	default:
		return ErrorKindUnknown
	}
}
