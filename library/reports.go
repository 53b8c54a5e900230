package library

import (
	"sort"
	"strings"
)

// BookCount pairs a catalog record with how many ledger entries reference it.
type BookCount struct {
	Book  *Book
	Count int
}

// MemberCount pairs a member with how many loans they have taken out.
type MemberCount struct {
	Member *Member
	Count  int
}

// OverdueStats summarizes the outstanding loans.
type OverdueStats struct {
	Total   int     `json:"total"`
	Overdue int     `json:"overdue"`
	OnTime  int     `json:"on_time"`
	Percent float64 `json:"percent"`
}

// SearchBooks returns catalog records whose title, author or genre contains q,
// case-insensitively, in catalog insertion order. An empty query matches
// nothing.
func (s *Store) SearchBooks(q string) []*Book {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []*Book
	for _, id := range s.bookOrder {
		b := s.books[id]
		if strings.Contains(strings.ToLower(b.Title), q) ||
			strings.Contains(strings.ToLower(b.Author), q) ||
			strings.Contains(strings.ToLower(b.Genre), q) {
			out = append(out, b)
		}
	}
	return out
}

// SearchMembers returns members whose name contains q, case-insensitively.
func (s *Store) SearchMembers(q string) []*Member {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	var out []*Member
	for _, id := range s.memberOrder {
		m := s.members[id]
		if strings.Contains(strings.ToLower(m.Name), q) {
			out = append(out, m)
		}
	}
	return out
}

// AvailableBooks lists the part of the catalog that can be checked out right
// now, in insertion order.
func (s *Store) AvailableBooks() []*Book {
	var out []*Book
	for _, id := range s.bookOrder {
		if b := s.books[id]; b.Available {
			out = append(out, b)
		}
	}
	return out
}

// MostBorrowedBooks ranks catalog records by how many loans the ledger holds
// for them, most first, ties broken by ascending book id, truncated to limit.
// Counted ids that no longer exist in the catalog are skipped.
func (s *Store) MostBorrowedBooks(limit int) []BookCount {
	counts := make(map[string]int)
	for _, id := range s.ledgerOrder {
		counts[s.ledger[id].BookID]++
	}
	out := make([]BookCount, 0, len(counts))
	for bookID, n := range counts {
		b, ok := s.books[bookID]
		if !ok {
			continue
		}
		out = append(out, BookCount{Book: b, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Book.ID < out[j].Book.ID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// MostActiveMembers ranks members by loans taken, most first, ties broken by
// ascending member id, truncated to limit. Ids missing from the roster are
// skipped.
func (s *Store) MostActiveMembers(limit int) []MemberCount {
	counts := make(map[string]int)
	for _, id := range s.ledgerOrder {
		counts[s.ledger[id].MemberID]++
	}
	out := make([]MemberCount, 0, len(counts))
	for memberID, n := range counts {
		m, ok := s.members[memberID]
		if !ok {
			continue
		}
		out = append(out, MemberCount{Member: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Member.ID < out[j].Member.ID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// OverdueReport partitions the active loans into overdue and on-time as of
// today. Percent is 0 when nothing is out.
func (e *Engine) OverdueReport() OverdueStats {
	today := e.today()
	var stats OverdueStats
	for _, id := range e.store.ledgerOrder {
		l := e.store.ledger[id]
		if !l.Active() {
			continue
		}
		stats.Total++
		if l.DueDate.Before(today) {
			stats.Overdue++
		} else {
			stats.OnTime++
		}
	}
	if stats.Total > 0 {
		stats.Percent = float64(stats.Overdue) / float64(stats.Total) * 100
	}
	return stats
}
