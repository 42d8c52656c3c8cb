// Package services defines the business logic for accounts, gacha imports,
// exports, and leaderboards. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// Parser failures carry their own taxonomy in the parse package and are
// propagated verbatim; translation into user-facing messages or HTTP status
// codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrAccountNotFound indicates that the requested account does not exist
	// or is not accessible to the current user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when a user attempts to link an account
	// (uid, game) pair they have already linked.
	ErrDuplicateAccount = errors.New("account already linked")

	// ErrInvalidGame is returned when a request names a game outside the
	// supported set.
	ErrInvalidGame = errors.New("unsupported game")

	// ErrInvalidUID is returned when a request carries an empty or
	// non-numeric in-game UID.
	ErrInvalidUID = errors.New("invalid uid")

	// ErrUnknownSource is returned when an import request declares a source
	// format the importer does not know.
	ErrUnknownSource = errors.New("unknown import source")

	// ErrItemNotInCatalog is returned when the reference catalog has no
	// rarity for an imported item id. The catalog is assumed complete for
	// released items, so this aborts the import rather than skipping rows.
	ErrItemNotInCatalog = errors.New("item missing from reference catalog")

	// ErrUnknownLeaderboard is returned when a submission names a leaderboard
	// type without registered rank-order semantics.
	ErrUnknownLeaderboard = errors.New("unknown leaderboard type")
)
