package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"librarian/library"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// bookRecord is one entry of the import file, a JSON array of objects.
type bookRecord struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
}

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <books.json> [data-file]\n", os.Args[0])
		os.Exit(2)
	}
	importFile := os.Args[1]
	dataFile := "library.json"
	if len(os.Args) == 3 {
		dataFile = os.Args[2]
	}

	raw, err := os.ReadFile(importFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", importFile, err)
		os.Exit(1)
	}
	var records []bookRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", importFile, err)
		os.Exit(1)
	}

	store := library.NewStore()
	if err := store.Load(dataFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", dataFile, err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	eng := library.NewEngine(store, dataFile, library.WithLogger(logger))

	fmt.Printf("Importing %d books into %s...\n", len(records), dataFile)

	successCount := 0
	errorCount := 0

	for _, rec := range records {
		fmt.Printf("Importing: %s by %s... ", rec.Title, rec.Author)
		book := &library.Book{
			ID:     rec.ID,
			Title:  rec.Title,
			Author: rec.Author,
			Year:   rec.Year,
			Genre:  rec.Genre,
		}
		if err := eng.AddBook(book); err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", book.ID)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nCatalog now contains:")
		fmt.Printf("%-8s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 90))
		for _, book := range store.Books() {
			fmt.Printf("%-8s %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
		}
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
