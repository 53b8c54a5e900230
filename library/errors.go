package library

import "errors"

// Domain failure kinds. Operations wrap these with context via fmt.Errorf and
// %w; callers branch with errors.Is. Every one of them is a recoverable
// condition to report back to the operator, never a reason to exit.
var (
	// ErrDuplicateID means the caller-supplied identifier is already in use.
	ErrDuplicateID = errors.New("identifier already in use")

	// ErrNotFound means no book, member or loan has the given identifier.
	ErrNotFound = errors.New("not found")

	// ErrConflict blocks deletion while referential state still points at
	// the entity (book on loan, member with books out).
	ErrConflict = errors.New("blocked by outstanding records")

	// ErrUnavailable means the book is already out on loan.
	ErrUnavailable = errors.New("book is not available")

	// ErrInactiveMember means the member's account is deactivated.
	ErrInactiveMember = errors.New("member is not active")

	// ErrLimitExceeded means the member already has the maximum number of
	// books out.
	ErrLimitExceeded = errors.New("borrow limit reached")

	// ErrNotActiveLoan means the book has no outstanding loan to return or
	// renew.
	ErrNotActiveLoan = errors.New("no active loan for this book")

	// ErrInvalid means the entity failed field validation.
	ErrInvalid = errors.New("invalid record")

	// ErrStorage is an infrastructure-level failure reading or writing the
	// data file, as opposed to a domain-rule violation.
	ErrStorage = errors.New("storage failure")
)
