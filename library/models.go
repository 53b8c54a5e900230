package library

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Book is a catalog record. Availability is derived state: it is false
// exactly while an active loan references the book.
type Book struct {
	ID        string `json:"id" db:"id" validate:"required"`
	Title     string `json:"title" db:"title" validate:"required"`
	Author    string `json:"author" db:"author" validate:"required"`
	Year      int    `json:"year" db:"year" validate:"omitempty,min=1400,max=2100"`
	Genre     string `json:"genre" db:"genre"`
	Available bool   `json:"available" db:"available"`
}

// Member represents a registered library member. BorrowedBookIDs holds the
// ids of the books the member currently has out, in checkout order, and never
// grows beyond the borrow limit.
type Member struct {
	ID              string   `json:"id" db:"id" validate:"required"`
	Name            string   `json:"name" db:"name" validate:"required"`
	Email           string   `json:"email" db:"email" validate:"omitempty,email"`
	Phone           string   `json:"phone" db:"phone"`
	Active          bool     `json:"active" db:"active"`
	BorrowedBookIDs []string `json:"borrowed_book_ids" db:"-"`
}

// Loan is one entry in the ledger. ReturnedAt stays nil while the loan is
// active; Fine is nonzero only when the book came back after the due date.
type Loan struct {
	ID         string     `json:"id" db:"id"`
	BookID     string     `json:"book_id" db:"book_id"`
	MemberID   string     `json:"member_id" db:"member_id"`
	LoanDate   time.Time  `json:"loan_date" db:"loan_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty" db:"returned_at"`
	Fine       float64    `json:"fine" db:"fine"`
}

// Active reports whether the loan is still outstanding.
func (l *Loan) Active() bool { return l.ReturnedAt == nil }

// Snapshot represents the complete library state for persistence.
// Books, Members and Ledger are serialized in insertion order; ActiveLoans
// maps book id to the id of its outstanding loan.
type Snapshot struct {
	Books       []*Book           `json:"books"`
	Members     []*Member         `json:"members"`
	Ledger      []*Loan           `json:"loans"`
	ActiveLoans map[string]string `json:"active_loans"`
	NextLoanID  int               `json:"next_loan_id"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())
