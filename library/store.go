package library

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store owns the in-memory collections backing one library instance. It is an
// explicit object passed by pointer, with process lifetime, never ambient
// state. Identifiers are opaque caller-supplied strings; the store enforces
// their uniqueness. The order slices preserve catalog insertion order for
// listings and for the serialized snapshot.
type Store struct {
	books       map[string]*Book
	bookOrder   []string
	members     map[string]*Member
	memberOrder []string

	// ledger holds every loan ever issued; active maps a book id to the id
	// of its single outstanding loan. A loan id is in active iff the loan
	// has no return date.
	ledger      map[string]*Loan
	ledgerOrder []string
	active      map[string]string

	nextLoanID int
}

// NewStore returns an empty store, the first-run state before Load.
func NewStore() *Store {
	return &Store{
		books:   make(map[string]*Book),
		members: make(map[string]*Member),
		ledger:  make(map[string]*Loan),
		active:  make(map[string]string),
	}
}

// ------------------ Books ------------------

// AddBook validates and inserts a new catalog record. New books start
// available.
func (s *Store) AddBook(b *Book) error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: book: %v", ErrInvalid, err)
	}
	if _, ok := s.books[b.ID]; ok {
		return fmt.Errorf("book %q: %w", b.ID, ErrDuplicateID)
	}
	b.Available = true
	s.books[b.ID] = b
	s.bookOrder = append(s.bookOrder, b.ID)
	return nil
}

// RemoveBook deletes a catalog record. A book that is out on loan cannot be
// removed.
func (s *Store) RemoveBook(id string) error {
	b, ok := s.books[id]
	if !ok {
		return fmt.Errorf("book %q: %w", id, ErrNotFound)
	}
	if !b.Available {
		return fmt.Errorf("book %q is on loan: %w", id, ErrConflict)
	}
	delete(s.books, id)
	s.bookOrder = removeID(s.bookOrder, id)
	return nil
}

// Book fetches a single catalog record.
func (s *Store) Book(id string) (*Book, error) {
	b, ok := s.books[id]
	if !ok {
		return nil, fmt.Errorf("book %q: %w", id, ErrNotFound)
	}
	return b, nil
}

// Books returns the catalog in insertion order.
func (s *Store) Books() []*Book {
	out := make([]*Book, 0, len(s.bookOrder))
	for _, id := range s.bookOrder {
		out = append(out, s.books[id])
	}
	return out
}

// ------------------ Members ------------------

// AddMember validates and inserts a new member. New members start active with
// nothing borrowed.
func (s *Store) AddMember(m *Member) error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: member: %v", ErrInvalid, err)
	}
	if _, ok := s.members[m.ID]; ok {
		return fmt.Errorf("member %q: %w", m.ID, ErrDuplicateID)
	}
	m.Active = true
	m.BorrowedBookIDs = nil
	s.members[m.ID] = m
	s.memberOrder = append(s.memberOrder, m.ID)
	return nil
}

// RemoveMember deletes a member. A member with books out cannot be removed.
func (s *Store) RemoveMember(id string) error {
	m, ok := s.members[id]
	if !ok {
		return fmt.Errorf("member %q: %w", id, ErrNotFound)
	}
	if len(m.BorrowedBookIDs) > 0 {
		return fmt.Errorf("member %q has %d books out: %w", id, len(m.BorrowedBookIDs), ErrConflict)
	}
	delete(s.members, id)
	s.memberOrder = removeID(s.memberOrder, id)
	return nil
}

// Member fetches a single member.
func (s *Store) Member(id string) (*Member, error) {
	m, ok := s.members[id]
	if !ok {
		return nil, fmt.Errorf("member %q: %w", id, ErrNotFound)
	}
	return m, nil
}

// Members returns all members in registration order.
func (s *Store) Members() []*Member {
	out := make([]*Member, 0, len(s.memberOrder))
	for _, id := range s.memberOrder {
		out = append(out, s.members[id])
	}
	return out
}

// ------------------ Loans ------------------

// Loan fetches a ledger entry.
func (s *Store) Loan(id string) (*Loan, error) {
	l, ok := s.ledger[id]
	if !ok {
		return nil, fmt.Errorf("loan %q: %w", id, ErrNotFound)
	}
	return l, nil
}

// Loans returns the full ledger in issuance order, returned loans included.
func (s *Store) Loans() []*Loan {
	out := make([]*Loan, 0, len(s.ledgerOrder))
	for _, id := range s.ledgerOrder {
		out = append(out, s.ledger[id])
	}
	return out
}

// ------------------ Persistence ------------------

// Save serializes the full state to path, overwriting prior content entirely.
// The write goes to a temp file first and then renames over the target. This
// is not crash-safe in any transactional sense; callers treat a failure as
// fatal to the triggering operation while the in-memory state stays valid.
func (s *Store) Save(path string) error {
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %v", ErrStorage, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create data dir: %v", ErrStorage, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write snapshot: %v", ErrStorage, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: replace snapshot: %v", ErrStorage, err)
	}
	return nil
}

// Load replaces the store's contents with the snapshot at path. A missing
// file is the first-run case and yields empty collections. Any read or decode
// failure surfaces as ErrStorage and leaves the current in-memory state
// untouched. Loaded data is trusted as-is; invariants are not re-validated.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.install(&Snapshot{})
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read snapshot: %v", ErrStorage, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: decode snapshot: %v", ErrStorage, err)
	}
	s.install(&snap)
	return nil
}

func (s *Store) snapshot() *Snapshot {
	snap := &Snapshot{
		Books:       s.Books(),
		Members:     s.Members(),
		Ledger:      s.Loans(),
		ActiveLoans: make(map[string]string, len(s.active)),
		NextLoanID:  s.nextLoanID,
	}
	for bookID, loanID := range s.active {
		snap.ActiveLoans[bookID] = loanID
	}
	return snap
}

func (s *Store) install(snap *Snapshot) {
	s.books = make(map[string]*Book, len(snap.Books))
	s.bookOrder = s.bookOrder[:0]
	for _, b := range snap.Books {
		s.books[b.ID] = b
		s.bookOrder = append(s.bookOrder, b.ID)
	}
	s.members = make(map[string]*Member, len(snap.Members))
	s.memberOrder = s.memberOrder[:0]
	for _, m := range snap.Members {
		s.members[m.ID] = m
		s.memberOrder = append(s.memberOrder, m.ID)
	}
	s.ledger = make(map[string]*Loan, len(snap.Ledger))
	s.ledgerOrder = s.ledgerOrder[:0]
	for _, l := range snap.Ledger {
		s.ledger[l.ID] = l
		s.ledgerOrder = append(s.ledgerOrder, l.ID)
	}
	s.active = make(map[string]string, len(snap.ActiveLoans))
	for bookID, loanID := range snap.ActiveLoans {
		s.active[bookID] = loanID
	}
	s.nextLoanID = snap.NextLoanID
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
