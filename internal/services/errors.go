// Package services defines the business logic for users, items, and swap
// negotiation. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// The sentinels fall into five kinds, which the handler layer maps onto HTTP
// statuses: validation (malformed input), not-found (referenced entity
// absent), authorization (actor lacks permission), precondition (entity in
// the wrong state for the operation), and conflict (uniqueness violation).
// Translation into user-facing messages or status codes is performed at the
// handler layer.
package services

import "errors"

// Validation errors (malformed or missing input).
var (
	// ErrMissingFields is returned when a create/update request omits one or
	// more required fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrNoImages is returned when an item is created without at least one image.
	ErrNoImages = errors.New("at least one image is required")

	// ErrInvalidStatus is returned when a moderation request carries a status
	// outside the allowed set (approved or rejected).
	ErrInvalidStatus = errors.New("status must be approved or rejected")

	// ErrInvalidDecision is returned when a swap response carries a decision
	// other than accept or reject.
	ErrInvalidDecision = errors.New("decision must be accept or reject")

	// ErrSelfSwap is returned when both items in a proposal belong to the
	// same user.
	ErrSelfSwap = errors.New("cannot swap with your own item")
)

// Not-found errors (referenced entity absent).
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrItemNotFound indicates the referenced item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrSwapNotFound indicates the referenced swap does not exist.
	ErrSwapNotFound = errors.New("swap not found")
)

// Authorization errors (actor lacks permission for this entity).
var (
	// ErrAdminRequired is returned when a non-admin actor invokes a
	// moderation operation.
	ErrAdminRequired = errors.New("admin privileges required")

	// ErrNotItemOwner is returned when a requester offers an item they do
	// not own.
	ErrNotItemOwner = errors.New("you can only offer your own items for swap")

	// ErrNotProvider is returned when anyone other than the provider attempts
	// to respond to a swap.
	ErrNotProvider = errors.New("only the item provider can respond to this swap")

	// ErrNotParticipant is returned when a user requests a swap they are not
	// part of.
	ErrNotParticipant = errors.New("not authorized to view this swap")

	// ErrAccountNotApproved is returned when a pending or rejected account
	// attempts an operation reserved for approved members.
	ErrAccountNotApproved = errors.New("account is pending approval")

	// ErrInvalidCredentials is returned on failed login attempts. The message
	// is deliberately vague.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Precondition errors (entity in the wrong state for the operation).
var (
	// ErrItemNotApproved is returned when a proposal targets a provider item
	// that is not currently approved.
	ErrItemNotApproved = errors.New("provider item is not available for swap")

	// ErrItemNotFeatureable is returned when the featured flag is toggled on
	// an item that is not approved.
	ErrItemNotFeatureable = errors.New("only approved items can be featured")

	// ErrSwapDecided is returned when a response targets a swap that has
	// already been accepted or rejected.
	ErrSwapDecided = errors.New("swap has already been decided")

	// ErrItemUnavailable is returned when an accept cannot commit because one
	// of the items was swapped away by a concurrent acceptance.
	ErrItemUnavailable = errors.New("item is no longer available")
)

// Conflict errors (uniqueness violations).
var (
	// ErrDuplicateSwap is returned when a pending swap already exists for the
	// exact proposal tuple.
	ErrDuplicateSwap = errors.New("a pending swap request already exists for this item pair")

	// ErrUsernameTaken is returned when registration or a profile update
	// collides with an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken is returned when registration collides with an existing
	// email address.
	ErrEmailTaken = errors.New("email already registered")
)
