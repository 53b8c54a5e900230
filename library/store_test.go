package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBookDuplicate(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddBook(&Book{ID: "B1", Title: "Dune", Author: "Herbert"}))
	err := s.AddBook(&Book{ID: "B1", Title: "Other", Author: "Someone"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestAddBookValidation(t *testing.T) {
	s := NewStore()
	err := s.AddBook(&Book{ID: "B1", Author: "Herbert"}) // no title
	assert.ErrorIs(t, err, ErrInvalid)
	err = s.AddBook(&Book{ID: "B1", Title: "Dune", Author: "Herbert", Year: 99})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestAddMemberValidation(t *testing.T) {
	s := NewStore()
	err := s.AddMember(&Member{ID: "M1", Name: "Ana", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalid)
	require.NoError(t, s.AddMember(&Member{ID: "M1", Name: "Ana", Email: "ana@example.com"}))
	err = s.AddMember(&Member{ID: "M1", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewMemberDefaults(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddMember(&Member{ID: "M1", Name: "Ana"}))
	m, err := s.Member("M1")
	require.NoError(t, err)
	assert.True(t, m.Active)
	assert.Empty(t, m.BorrowedBookIDs)
}

func TestRemoveBook(t *testing.T) {
	eng, _ := tempEngine(t)
	seed(t, eng, 1, 1)

	assert.ErrorIs(t, eng.RemoveBook("nope"), ErrNotFound)

	_, err := eng.IssueLoan("B1", "M1")
	require.NoError(t, err)
	assert.ErrorIs(t, eng.RemoveBook("B1"), ErrConflict)

	_, err = eng.ReturnLoan("B1")
	require.NoError(t, err)
	require.NoError(t, eng.RemoveBook("B1"))
	assert.Empty(t, eng.Store().Books())
}

func TestRemoveMember(t *testing.T) {
	eng, _ := tempEngine(t)
	seed(t, eng, 1, 1)

	assert.ErrorIs(t, eng.RemoveMember("nope"), ErrNotFound)

	_, err := eng.IssueLoan("B1", "M1")
	require.NoError(t, err)
	assert.ErrorIs(t, eng.RemoveMember("M1"), ErrConflict)

	_, err = eng.ReturnLoan("B1")
	require.NoError(t, err)
	require.NoError(t, eng.RemoveMember("M1"))
	assert.Empty(t, eng.Store().Members())
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "absent.json")))
	assert.Empty(t, s.Books())
	assert.Empty(t, s.Members())
	assert.Empty(t, s.Loans())
}

func TestLoadCorruptFileKeepsState(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddBook(&Book{ID: "B1", Title: "Dune", Author: "Herbert"}))

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := s.Load(path)
	assert.ErrorIs(t, err, ErrStorage)

	// The failed load must leave the previous in-memory state untouched.
	books := s.Books()
	require.Len(t, books, 1)
	assert.Equal(t, "B1", books[0].ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	eng, clock := tempEngine(t)
	seed(t, eng, 3, 2)

	_, err := eng.IssueLoan("B1", "M1")
	require.NoError(t, err)
	clock.advance(20)
	_, err = eng.ReturnLoan("B1")
	require.NoError(t, err)
	_, err = eng.IssueLoan("B2", "M2")
	require.NoError(t, err)

	loaded := NewStore()
	require.NoError(t, loaded.Load(eng.path))

	assert.Equal(t, eng.Store().bookOrder, loaded.bookOrder)
	assert.Equal(t, eng.Store().memberOrder, loaded.memberOrder)
	assert.Equal(t, eng.Store().ledgerOrder, loaded.ledgerOrder)
	assert.Equal(t, eng.Store().active, loaded.active)
	assert.Equal(t, eng.Store().nextLoanID, loaded.nextLoanID)

	was, err := eng.Store().Loan("1")
	require.NoError(t, err)
	got, err := loaded.Loan("1")
	require.NoError(t, err)
	assert.Equal(t, was.Fine, got.Fine)
	require.NotNil(t, got.ReturnedAt)
	assert.True(t, was.ReturnedAt.Equal(*got.ReturnedAt))
}

func TestSaveOverwritesPriorContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.json")

	s := NewStore()
	require.NoError(t, s.AddBook(&Book{ID: "B1", Title: "Dune", Author: "Herbert"}))
	require.NoError(t, s.AddBook(&Book{ID: "B2", Title: "Hobbit", Author: "Tolkien"}))
	require.NoError(t, s.Save(path))

	require.NoError(t, s.RemoveBook("B2"))
	require.NoError(t, s.Save(path))

	loaded := NewStore()
	require.NoError(t, loaded.Load(path))
	assert.Len(t, loaded.Books(), 1)
}
