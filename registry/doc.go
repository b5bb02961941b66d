// Package registry implements the name registration state machine.
//
// A name moves from unregistered to registered exactly once and then only
// changes owner:
//
//	Unregistered --Register--> Registered(owner) --Transfer--> Registered(new owner)
//
// Registration validates the name and charges the configured registration
// price; transfer charges the transfer price and requires the sender to be
// the current owner. Names are never deleted and never expire.
//
// # Names
//
// A valid name is 3 to 64 characters of lowercase ASCII letters, digits,
// '.', '-' and '_'. Length is counted in characters, not bytes; see
// [ValidateName].
//
// # Payments
//
// Prices come from the configuration written once by [Registry.Initialize] and are
// checked with [coin.AssertSufficient]: a single attached coin must cover the
// price on its own.
//
// # Errors
//
// Business rule failures are returned as sentinel errors and leave state
// untouched:
//
//   - [ErrInvalidName] - name fails validation (see [NameError])
//   - [coin.ErrInsufficientFunds] - attached funds do not cover the price
//   - [ErrNameTaken] - name already registered
//   - [ErrNameNotFound] - transfer of an unregistered name
//   - [ErrNotOwner] - transfer by someone other than the owner
//   - [ErrInvalidAddress] - empty sender or recipient identity
//   - [ErrAlreadyInitialized] - a second [Registry.Initialize]
//
// Backend failures are wrapped in [ErrStoreFailure].
package registry
