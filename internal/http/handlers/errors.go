// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package), plus failService(),
// the single translation point from the services error taxonomy to HTTP
// statuses. These codes provide clients with a stable, machine-readable error
// taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, unauthorized, conflict) mirror common HTTP
//     status semantics to aid interoperability.
//   - precondition_failed (mapped to 422) marks requests that are well-formed
//     but target an entity in the wrong state (e.g., responding to a decided
//     swap, featuring an unapproved item).
//   - All error responses must include both an HTTP status and one of these codes.
//
// Usage:
//   - Handlers call failService() for any error returned by a service method;
//     it selects the status/code pair from the sentinel kind.
//   - Clients are expected to branch on these codes for programmatic error handling.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-swap-backend/internal/services"
)

const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeForbidden          = "forbidden"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodePreconditionFailed = "precondition_failed"
	ErrCodeRateLimited        = "too_many_requests"
	ErrCodeInternal           = "internal_error"

	// Domain-specific:
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// failService translates a services-layer error into the corresponding HTTP
// response. Unknown errors become a 500 with a generic message so internal
// details never leak to clients.
func failService(c *gin.Context, err error) {
	switch {
	// Validation: malformed or missing input.
	case errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrNoImages),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrSelfSwap):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())

	// Not found: referenced entity absent.
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrSwapNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())

	// Authentication: bad credentials.
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())

	// Authorization: actor lacks permission for this entity.
	case errors.Is(err, services.ErrAdminRequired),
		errors.Is(err, services.ErrNotItemOwner),
		errors.Is(err, services.ErrNotProvider),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrAccountNotApproved):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())

	// Precondition: entity in the wrong state for the operation.
	case errors.Is(err, services.ErrItemNotApproved),
		errors.Is(err, services.ErrItemNotFeatureable),
		errors.Is(err, services.ErrSwapDecided),
		errors.Is(err, services.ErrItemUnavailable):
		fail(c, http.StatusUnprocessableEntity, ErrCodePreconditionFailed, err.Error())

	// Conflict: uniqueness violations.
	case errors.Is(err, services.ErrDuplicateSwap),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
