package account

import "errors"

type Kind string

const (
	KindValidation      Kind = "validation"
	KindAuthentication  Kind = "authentication"
	KindAuthorization   Kind = "authorization"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindPendingApproval Kind = "pending_approval"
)

// Error is the structured failure surfaced to callers. Sentinels below are
// compared by identity with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func newErr(k Kind, code, msg string) *Error { return &Error{Kind: k, Code: code, Message: msg} }

var (
	ErrMissingIdentifier = newErr(KindValidation, "missing_identifier", "email or account number is required")
	ErrMissingPassword   = newErr(KindValidation, "missing_password", "password is required")
	ErrInvalidEmail      = newErr(KindValidation, "invalid_email", "email entered is invalid")
	ErrInvalidRole       = newErr(KindValidation, "invalid_role", "account role is not recognised")
	ErrWeakPassword      = newErr(KindValidation, "weak_password", "password must be at least 8 characters")
	ErrNoAccountsToLink  = newErr(KindValidation, "no_accounts_to_link", "account authentication data was not provided")
	ErrInvalidField      = newErr(KindValidation, "invalid_field", "a field in the update has the wrong type or is empty")
	ErrMissingName       = newErr(KindValidation, "missing_name", "account name is required")

	ErrNoToken            = newErr(KindAuthentication, "no_token", "you are not logged in, please login and try again")
	ErrInvalidToken       = newErr(KindAuthentication, "invalid_token", "session token is invalid or expired")
	ErrInvalidCredentials = newErr(KindAuthentication, "invalid_credentials", "credentials provided are incorrect")
	ErrIdentifierMismatch = newErr(KindAuthentication, "identifier_mismatch", "email doesn't match the account number")
	ErrAccountGone        = newErr(KindAuthentication, "account_gone", "the account for this session no longer exists")
	ErrUnauthenticated    = newErr(KindAuthentication, "unauthenticated", "you are not logged in, please login and try again")

	ErrForbidden    = newErr(KindAuthorization, "forbidden", "you don't have permission to perform this action")
	ErrSelfApproval = newErr(KindAuthorization, "self_approval", "you can't approve your own account")
	ErrNotLinked    = newErr(KindAuthorization, "not_linked", "account is not linked to the logged in account")

	ErrDuplicateAccount = newErr(KindConflict, "duplicate_account", "an account with this account number or email already exists")

	ErrNotFound = newErr(KindNotFound, "not_found", "account not found")

	ErrPendingApproval = newErr(KindPendingApproval, "pending_approval", "account is pending approval")
)

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
