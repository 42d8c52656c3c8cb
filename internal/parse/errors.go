// Package parse implements the gacha-log import parsers. This file
// centralizes the parser error taxonomy so the service and handler layers can
// map each failure to a specific, user-actionable response.
//
// A malformed file is rejected as a whole: parsers never skip bad records.
// The single intentional leniency is StarDB's "no entry for this UID" case,
// which yields zero records instead of an error, because a multi-account
// export legitimately may not contain every account.
package parse

import "errors"

var (
	// ErrInvalidFileExtension indicates the uploaded file's extension does not
	// match the declared source format.
	ErrInvalidFileExtension = errors.New("invalid file extension for source")

	// ErrAccountGameMismatch indicates the file's game differs from the target
	// account's game.
	ErrAccountGameMismatch = errors.New("file belongs to a different game")

	// ErrUIDMismatch indicates the file's UID differs from the target
	// account's UID.
	ErrUIDMismatch = errors.New("file belongs to a different account")

	// ErrNoGachaLogFound indicates the file parsed but contained no usable
	// gacha log (e.g., an empty profile tree).
	ErrNoGachaLogFound = errors.New("no gacha log found in file")

	// ErrUnresolvableItemName indicates a record lacked an item id and the
	// item name could not be resolved through the catalog. This is treated as
	// unrecoverable input, not something to skip.
	ErrUnresolvableItemName = errors.New("item name cannot be resolved to an id")

	// ErrUnrecognizedSchemaVersion indicates a UIGF file carried neither v3
	// nor v4 markers.
	ErrUnrecognizedSchemaVersion = errors.New("unrecognized schema version")

	// ErrMalformedFile indicates the payload could not be decoded at all for
	// the declared source.
	ErrMalformedFile = errors.New("malformed gacha log file")
)
