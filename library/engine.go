package library

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	// loanPeriodDays is the length of a loan and of each renewal.
	loanPeriodDays = 14
	// finePerDay accrues for every whole day a return comes after the due date.
	finePerDay = 2.0
	// borrowLimit caps how many books a member may have out at once.
	borrowLimit = 3
)

// IDAllocator hands out loan identifiers.
type IDAllocator interface {
	NextLoanID(s *Store) string
}

// SequenceIDs allocates ids from the store's persisted counter. The counter
// only ever increases, so ids stay unique even if ledger entries are pruned.
type SequenceIDs struct{}

func (SequenceIDs) NextLoanID(s *Store) string {
	s.nextLoanID++
	return strconv.Itoa(s.nextLoanID)
}

// UUIDs allocates random loan ids, a drop-in alternative when sequential
// numbering is undesirable.
type UUIDs struct{}

func (UUIDs) NextLoanID(*Store) string { return uuid.NewString() }

// Engine runs circulation over a store: loan issuance, return and renewal,
// fine computation, and the catalog/membership mutations that must stay
// consistent with outstanding loans. Every mutating operation ends with a
// full snapshot save to the engine's data file. All dates are whole-day
// granularity, truncated to midnight UTC.
type Engine struct {
	store *Store
	path  string
	now   func() time.Time
	ids   IDAllocator
	log   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDAllocator overrides loan id generation.
func WithIDAllocator(ids IDAllocator) Option {
	return func(e *Engine) { e.ids = ids }
}

// WithLogger overrides the engine's logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine wires an engine to the store it mutates and the data file it
// saves to.
func NewEngine(store *Store, path string, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		path:  path,
		now:   time.Now,
		ids:   SequenceIDs{},
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying store for read-only queries.
func (e *Engine) Store() *Store { return e.store }

// ------------------ Catalog & membership ------------------

func (e *Engine) AddBook(b *Book) error {
	if err := e.store.AddBook(b); err != nil {
		return err
	}
	return e.persist("add book", "book", b.ID)
}

func (e *Engine) RemoveBook(id string) error {
	if err := e.store.RemoveBook(id); err != nil {
		return err
	}
	return e.persist("remove book", "book", id)
}

func (e *Engine) AddMember(m *Member) error {
	if err := e.store.AddMember(m); err != nil {
		return err
	}
	return e.persist("add member", "member", m.ID)
}

func (e *Engine) RemoveMember(id string) error {
	if err := e.store.RemoveMember(id); err != nil {
		return err
	}
	return e.persist("remove member", "member", id)
}

// SetMemberActive toggles a member's account independently of their borrowing
// state. Deactivation blocks new issuance only; books already out can still
// come back.
func (e *Engine) SetMemberActive(id string, active bool) error {
	m, err := e.store.Member(id)
	if err != nil {
		return err
	}
	m.Active = active
	return e.persist("set member active", "member", id, "active", active)
}

// ------------------ Circulation ------------------

// IssueLoan checks the book out to the member for the standard loan period.
func (e *Engine) IssueLoan(bookID, memberID string) (*Loan, error) {
	book, err := e.store.Book(bookID)
	if err != nil {
		return nil, err
	}
	member, err := e.store.Member(memberID)
	if err != nil {
		return nil, err
	}
	if !book.Available {
		return nil, fmt.Errorf("book %q: %w", bookID, ErrUnavailable)
	}
	if !member.Active {
		return nil, fmt.Errorf("member %q: %w", memberID, ErrInactiveMember)
	}
	if len(member.BorrowedBookIDs) >= borrowLimit {
		return nil, fmt.Errorf("member %q has %d books out: %w", memberID, len(member.BorrowedBookIDs), ErrLimitExceeded)
	}

	today := e.today()
	loan := &Loan{
		ID:       e.ids.NextLoanID(e.store),
		BookID:   bookID,
		MemberID: memberID,
		LoanDate: today,
		DueDate:  today.AddDate(0, 0, loanPeriodDays),
	}
	e.store.ledger[loan.ID] = loan
	e.store.ledgerOrder = append(e.store.ledgerOrder, loan.ID)
	e.store.active[bookID] = loan.ID
	book.Available = false
	member.BorrowedBookIDs = append(member.BorrowedBookIDs, bookID)

	if err := e.persist("issue loan", "loan", loan.ID, "book", bookID, "member", memberID); err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan closes the book's active loan, computing the fine for a late
// return. The ledger entry is updated in place and only the active index
// entry goes away.
func (e *Engine) ReturnLoan(bookID string) (*Loan, error) {
	loanID, ok := e.store.active[bookID]
	if !ok {
		return nil, fmt.Errorf("book %q: %w", bookID, ErrNotActiveLoan)
	}
	loan := e.store.ledger[loanID]

	today := e.today()
	returned := today
	loan.ReturnedAt = &returned
	if late := daysBetween(loan.DueDate, today); late > 0 {
		loan.Fine = float64(late) * finePerDay
	}

	if book, err := e.store.Book(bookID); err == nil {
		book.Available = true
	}
	if member, err := e.store.Member(loan.MemberID); err == nil {
		member.BorrowedBookIDs = removeID(member.BorrowedBookIDs, bookID)
	}
	delete(e.store.active, bookID)

	if err := e.persist("return loan", "loan", loan.ID, "book", bookID, "fine", loan.Fine); err != nil {
		return nil, err
	}
	return loan, nil
}

// RenewLoan extends the active loan by one loan period counted from the prior
// due date, not from today. Renewing an already-overdue loan therefore does
// not reset the overdue clock. No fine is computed at renewal time.
func (e *Engine) RenewLoan(bookID string) (*Loan, error) {
	loanID, ok := e.store.active[bookID]
	if !ok {
		return nil, fmt.Errorf("book %q: %w", bookID, ErrNotActiveLoan)
	}
	loan := e.store.ledger[loanID]
	loan.DueDate = loan.DueDate.AddDate(0, 0, loanPeriodDays)

	if err := e.persist("renew loan", "loan", loan.ID, "book", bookID, "due", loan.DueDate); err != nil {
		return nil, err
	}
	return loan, nil
}

// ListActive returns the outstanding loans in issuance order.
func (e *Engine) ListActive() []*Loan {
	var out []*Loan
	for _, id := range e.store.ledgerOrder {
		if l := e.store.ledger[id]; l.Active() {
			out = append(out, l)
		}
	}
	return out
}

// ListHistory returns the full ledger in issuance order.
func (e *Engine) ListHistory() []*Loan { return e.store.Loans() }

// ListByMember returns every loan, past and present, issued to the member.
func (e *Engine) ListByMember(memberID string) []*Loan {
	var out []*Loan
	for _, id := range e.store.ledgerOrder {
		if l := e.store.ledger[id]; l.MemberID == memberID {
			out = append(out, l)
		}
	}
	return out
}

// ------------------ internals ------------------

func (e *Engine) today() time.Time {
	y, m, d := e.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *Engine) persist(op string, args ...any) error {
	if err := e.store.Save(e.path); err != nil {
		e.log.Error("snapshot save failed", append([]any{"op", op, "err", err}, args...)...)
		return err
	}
	e.log.Info(op, args...)
	return nil
}

// daysBetween counts whole days from a to b; both are midnight-truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
