package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"librarian/library"
)

const defaultDataFile = "library.json"

const dateLayout = "2006-01-02"

var dataFile string

func main() {
	root := &cobra.Command{
		Use:   "librarian",
		Short: "Catalog, membership and circulation records for a small library",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	root.PersistentFlags().StringVar(&dataFile, "file", defaultDataFile, "path to the library data file")

	root.AddCommand(&cobra.Command{
		Use:   "archive <sqlite-file>",
		Short: "Export the library state to a SQLite archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			store := library.NewStore()
			if err := store.Load(dataFile); err != nil {
				return err
			}
			if err := store.ExportArchive(args[0]); err != nil {
				return err
			}
			fmt.Printf("Archived %d books, %d members, %d loans to %s\n",
				len(store.Books()), len(store.Members()), len(store.Loans()), args[0])
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSession(_ *cobra.Command, _ []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store := library.NewStore()
	if err := store.Load(dataFile); err != nil {
		return fmt.Errorf("loading %s: %w", dataFile, err)
	}
	eng := library.NewEngine(store, dataFile, library.WithLogger(logger))

	scanner := bufio.NewScanner(os.Stdin)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("Welcome to the Library Circulation System!")
		fmt.Println("Available commands:")
		fmt.Println("  Catalog: add book, remove book, list books, search book")
		fmt.Println("  Members: add member, remove member, list members, deactivate member, activate member")
		fmt.Println("  Circulation: issue, return, renew, list loans, loan history, member loans")
		fmt.Println("  Reports: top books, top members, overdue report")
		fmt.Println("  System: exit")
	}

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		cmd := strings.TrimSpace(scanner.Text())

		switch cmd {
		case "add book":
			handleAddBook(scanner, eng)
		case "remove book":
			handleRemoveBook(scanner, eng)
		case "list books":
			handleListBooks(eng)
		case "search book":
			handleSearchBooks(scanner, eng)
		case "add member":
			handleAddMember(scanner, eng)
		case "remove member":
			handleRemoveMember(scanner, eng)
		case "list members":
			handleListMembers(eng)
		case "deactivate member":
			handleSetMemberActive(scanner, eng, false)
		case "activate member":
			handleSetMemberActive(scanner, eng, true)
		case "issue":
			handleIssue(scanner, eng)
		case "return":
			handleReturn(scanner, eng)
		case "renew":
			handleRenew(scanner, eng)
		case "list loans":
			printLoans(eng.ListActive())
		case "loan history":
			printLoans(eng.ListHistory())
		case "member loans":
			handleMemberLoans(scanner, eng)
		case "top books":
			handleTopBooks(scanner, eng)
		case "top members":
			handleTopMembers(scanner, eng)
		case "overdue report":
			handleOverdueReport(eng)
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		case "":
			// ignore empty lines
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
	return nil
}

func prompt(sc *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}

func handleAddBook(sc *bufio.Scanner, eng *library.Engine) {
	id, ok := prompt(sc, "Book ID: ")
	if !ok {
		return
	}
	title, ok := prompt(sc, "Title: ")
	if !ok {
		return
	}
	author, ok := prompt(sc, "Author: ")
	if !ok {
		return
	}
	yearStr, ok := prompt(sc, "Year: ")
	if !ok {
		return
	}
	year := 0
	if yearStr != "" {
		var err error
		year, err = strconv.Atoi(yearStr)
		if err != nil {
			fmt.Printf("Invalid year: %s\n", yearStr)
			return
		}
	}
	genre, ok := prompt(sc, "Genre: ")
	if !ok {
		return
	}

	book := &library.Book{ID: id, Title: title, Author: author, Year: year, Genre: genre}
	if err := eng.AddBook(book); err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added book '%s' with ID %s\n", title, id)
}

func handleRemoveBook(sc *bufio.Scanner, eng *library.Engine) {
	id, ok := prompt(sc, "Book ID: ")
	if !ok {
		return
	}
	if err := eng.RemoveBook(id); err != nil {
		fmt.Printf("Error removing book: %v\n", err)
		return
	}
	fmt.Printf("Removed book %s\n", id)
}

func handleListBooks(eng *library.Engine) {
	books := eng.Store().Books()
	if len(books) == 0 {
		fmt.Println("No books in library.")
		return
	}
	printBooks(eng, books)
}

func printBooks(eng *library.Engine, books []*library.Book) {
	fmt.Printf("%-8s %-30s %-25s %-6s %-15s %-10s %s\n", "ID", "Title", "Author", "Year", "Genre", "Available", "Borrower")
	fmt.Println(strings.Repeat("-", 110))
	for _, b := range books {
		availStr := "Yes"
		borrowerInfo := "None"
		if !b.Available {
			availStr = "No"
			borrowerInfo = borrowerOf(eng, b.ID)
		}
		fmt.Printf("%-8s %-30s %-25s %-6d %-15s %-10s %s\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			b.Year,
			truncateString(b.Genre, 15),
			availStr,
			borrowerInfo)
	}
}

// borrowerOf resolves who currently holds the book, for display only.
func borrowerOf(eng *library.Engine, bookID string) string {
	for _, l := range eng.ListActive() {
		if l.BookID != bookID {
			continue
		}
		if m, err := eng.Store().Member(l.MemberID); err == nil {
			return fmt.Sprintf("%s (ID: %s)", m.Name, m.ID)
		}
		return fmt.Sprintf("ID: %s", l.MemberID)
	}
	return "Unknown"
}

func handleSearchBooks(sc *bufio.Scanner, eng *library.Engine) {
	query, ok := prompt(sc, "Query: ")
	if !ok {
		return
	}
	books := eng.Store().SearchBooks(query)
	if len(books) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s) matching '%s':\n", len(books), query)
	printBooks(eng, books)
}

func handleAddMember(sc *bufio.Scanner, eng *library.Engine) {
	id, ok := prompt(sc, "Member ID: ")
	if !ok {
		return
	}
	name, ok := prompt(sc, "Name: ")
	if !ok {
		return
	}
	email, ok := prompt(sc, "Email (optional): ")
	if !ok {
		return
	}
	phone, ok := prompt(sc, "Phone (optional): ")
	if !ok {
		return
	}

	member := &library.Member{ID: id, Name: name, Email: email, Phone: phone}
	if err := eng.AddMember(member); err != nil {
		fmt.Printf("Error adding member: %v\n", err)
		return
	}
	fmt.Printf("Added member '%s' with ID %s\n", name, id)
}

func handleRemoveMember(sc *bufio.Scanner, eng *library.Engine) {
	id, ok := prompt(sc, "Member ID: ")
	if !ok {
		return
	}
	if err := eng.RemoveMember(id); err != nil {
		fmt.Printf("Error removing member: %v\n", err)
		return
	}
	fmt.Printf("Removed member %s\n", id)
}

func handleListMembers(eng *library.Engine) {
	members := eng.Store().Members()
	if len(members) == 0 {
		fmt.Println("No members registered.")
		return
	}
	fmt.Printf("%-8s %-30s %-25s %-15s %-8s %s\n", "ID", "Name", "Email", "Phone", "Active", "Books Out")
	fmt.Println(strings.Repeat("-", 100))
	for _, m := range members {
		activeStr := "Yes"
		if !m.Active {
			activeStr = "No"
		}
		booksOut := "None"
		if len(m.BorrowedBookIDs) > 0 {
			booksOut = strings.Join(m.BorrowedBookIDs, ", ")
		}
		fmt.Printf("%-8s %-30s %-25s %-15s %-8s %s\n",
			m.ID,
			truncateString(m.Name, 30),
			truncateString(m.Email, 25),
			truncateString(m.Phone, 15),
			activeStr,
			booksOut)
	}
}

func handleSetMemberActive(sc *bufio.Scanner, eng *library.Engine, active bool) {
	id, ok := prompt(sc, "Member ID: ")
	if !ok {
		return
	}
	if err := eng.SetMemberActive(id, active); err != nil {
		fmt.Printf("Error updating member: %v\n", err)
		return
	}
	if active {
		fmt.Printf("Member %s activated\n", id)
	} else {
		fmt.Printf("Member %s deactivated\n", id)
	}
}

func handleIssue(sc *bufio.Scanner, eng *library.Engine) {
	bookID, ok := prompt(sc, "Book ID: ")
	if !ok {
		return
	}
	memberID, ok := prompt(sc, "Member ID: ")
	if !ok {
		return
	}
	loan, err := eng.IssueLoan(bookID, memberID)
	if err != nil {
		fmt.Printf("Error issuing loan: %v\n", err)
		return
	}
	fmt.Printf("Loan %s issued: book %s to member %s, due %s\n",
		loan.ID, loan.BookID, loan.MemberID, loan.DueDate.Format(dateLayout))
}

func handleReturn(sc *bufio.Scanner, eng *library.Engine) {
	bookID, ok := prompt(sc, "Book ID: ")
	if !ok {
		return
	}
	loan, err := eng.ReturnLoan(bookID)
	if err != nil {
		fmt.Printf("Error returning book: %v\n", err)
		return
	}
	if loan.Fine > 0 {
		fmt.Printf("Book %s returned late. Fine due: %.2f\n", bookID, loan.Fine)
	} else {
		fmt.Printf("Book %s returned on time.\n", bookID)
	}
}

func handleRenew(sc *bufio.Scanner, eng *library.Engine) {
	bookID, ok := prompt(sc, "Book ID: ")
	if !ok {
		return
	}
	loan, err := eng.RenewLoan(bookID)
	if err != nil {
		fmt.Printf("Error renewing loan: %v\n", err)
		return
	}
	fmt.Printf("Loan %s renewed, now due %s\n", loan.ID, loan.DueDate.Format(dateLayout))
}

func handleMemberLoans(sc *bufio.Scanner, eng *library.Engine) {
	memberID, ok := prompt(sc, "Member ID: ")
	if !ok {
		return
	}
	printLoans(eng.ListByMember(memberID))
}

func printLoans(loans []*library.Loan) {
	if len(loans) == 0 {
		fmt.Println("No loans.")
		return
	}
	fmt.Printf("%-8s %-8s %-8s %-12s %-12s %-12s %s\n", "Loan", "Book", "Member", "Issued", "Due", "Returned", "Fine")
	fmt.Println(strings.Repeat("-", 80))
	for _, l := range loans {
		returned := "-"
		if l.ReturnedAt != nil {
			returned = l.ReturnedAt.Format(dateLayout)
		}
		fmt.Printf("%-8s %-8s %-8s %-12s %-12s %-12s %.2f\n",
			l.ID, l.BookID, l.MemberID,
			l.LoanDate.Format(dateLayout),
			l.DueDate.Format(dateLayout),
			returned,
			l.Fine)
	}
}

func handleTopBooks(sc *bufio.Scanner, eng *library.Engine) {
	limit := promptLimit(sc)
	ranked := eng.Store().MostBorrowedBooks(limit)
	if len(ranked) == 0 {
		fmt.Println("No loans recorded yet.")
		return
	}
	fmt.Printf("%-6s %-8s %-30s %s\n", "Loans", "ID", "Title", "Author")
	fmt.Println(strings.Repeat("-", 70))
	for _, bc := range ranked {
		fmt.Printf("%-6d %-8s %-30s %s\n", bc.Count, bc.Book.ID, truncateString(bc.Book.Title, 30), bc.Book.Author)
	}
}

func handleTopMembers(sc *bufio.Scanner, eng *library.Engine) {
	limit := promptLimit(sc)
	ranked := eng.Store().MostActiveMembers(limit)
	if len(ranked) == 0 {
		fmt.Println("No loans recorded yet.")
		return
	}
	fmt.Printf("%-6s %-8s %s\n", "Loans", "ID", "Name")
	fmt.Println(strings.Repeat("-", 50))
	for _, mc := range ranked {
		fmt.Printf("%-6d %-8s %s\n", mc.Count, mc.Member.ID, mc.Member.Name)
	}
}

func promptLimit(sc *bufio.Scanner) int {
	raw, ok := prompt(sc, "How many (default 5): ")
	if !ok || raw == "" {
		return 5
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		fmt.Printf("Invalid number %q, using 5\n", raw)
		return 5
	}
	return n
}

func handleOverdueReport(eng *library.Engine) {
	stats := eng.OverdueReport()
	fmt.Printf("Active loans: %d\n", stats.Total)
	fmt.Printf("Overdue:      %d\n", stats.Overdue)
	fmt.Printf("On time:      %d\n", stats.OnTime)
	fmt.Printf("Overdue rate: %.1f%%\n", stats.Percent)
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
