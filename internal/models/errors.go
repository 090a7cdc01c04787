package models

import (
	"errors"
)

// Kind classifies errors by the way a client can react to them.
type Kind int

const (
	KindValidation  Kind = iota + 1 // Bad shape, length or missing field
	KindNotFound                    // A referenced resource does not exist
	KindAuth                        // Credentials or token are not valid
	KindForbidden                   // The token does not grant access to the resource
	KindConsistency                 // References between resources do not match
	KindStorage                     // The database failed
	KindPartial                     // A multi-record write was only partially applied
)

// Error is an error with a stable, machine readable reason.
//
// The reason strings are part of the API contract and must never change.
type Error struct {
	Kind   Kind
	Reason string
	msg    string
}

func (e *Error) Error() string {
	return e.msg
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

var (
	ErrCategoryNameTooLong = &Error{KindValidation, "CAT_NAME_TOO_LONG", "the category name must not be longer than 100 characters"}
	ErrMissingDate         = &Error{KindValidation, "DATE_MISSING", "a goal of type SAVEBYDATE needs a date"}
	ErrDateFormat          = &Error{KindValidation, "DATE_FORMAT_NOT_VALID", "the date is not formatted correctly"}
	ErrInvalidBody         = &Error{KindValidation, "BODY_NOT_VALID", "the body of your request contains invalid or un-parseable data. Please check and try again"}
	ErrInvalidParameter    = &Error{KindValidation, "PARAMETER_NOT_VALID", "a parameter of your request is not valid"}
	ErrUserNameNotUnique   = &Error{KindValidation, "USER_NAME_NOT_UNIQUE", "a user with this name already exists"}
	ErrIdempotencyConflict = &Error{KindValidation, "IDEMPOTENCY_KEY_REUSED", "the idempotency key was already used for a different affectation"}

	ErrResourceNotFound = &Error{KindNotFound, "NOT_FOUND", "there is no"}

	ErrInvalidToken = &Error{KindAuth, "TOKEN_NOT_VALID", "the token is not valid"}
	ErrInvalidLogin = &Error{KindAuth, "LOGIN_NOT_VALID", "the username or password is not valid"}

	ErrBudgetNotAllowed = &Error{KindForbidden, "BUDGET_NOT_ALLOWED", "the token does not grant access to this budget"}

	ErrInvalidCategory = &Error{KindConsistency, "CATEGORY_NOT_VALID", "the category does not exist in this budget"}

	ErrGeneral          = &Error{KindStorage, "UNKNOWN", "an error occurred on the server during your request"}
	ErrPartiallyApplied = &Error{KindPartial, "AFFECTATION_PARTIALLY_APPLIED", "the affectation was recorded, but not all balances could be updated"}
)
