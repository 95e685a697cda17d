package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"bookshelf/internal/book"
	"bookshelf/internal/reading"
	"bookshelf/internal/view"
)

func printBooks(out io.Writer, books []book.Book) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tGENRE\tPAGES")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, str(b.Genre), num(b.Pages))
	}
	_ = tw.Flush()
}

func printReadings(out io.Writer, readings []reading.Reading, titles map[string]string) {
	if len(readings) == 0 {
		fmt.Fprintln(out, "No readings found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBOOK\tSTATUS\tSTARTED\tFINISHED\tRATING")
	for _, r := range readings {
		title := titles[r.BookID]
		if title == "" && r.Book != nil {
			title = r.Book.Title
		}
		rating := "-"
		if r.Rating != nil {
			rating = strings.Repeat("*", *r.Rating)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, title, r.Status, r.StartDate, str(r.EndDate), rating)
	}
	_ = tw.Flush()
}

func printStats(out io.Writer, s view.Stats) {
	avg := "-"
	if s.RatedCount > 0 {
		avg = strconv.FormatFloat(s.AverageRating, 'f', 1, 64)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Books\t%d\n", s.TotalBooks)
	fmt.Fprintf(tw, "Reading now\t%d\n", s.InProgress)
	fmt.Fprintf(tw, "Completed\t%d\n", s.Completed)
	fmt.Fprintf(tw, "Pages read\t%d\n", s.PagesRead)
	fmt.Fprintf(tw, "Average rating\t%s\n", avg)
	_ = tw.Flush()
}

func joinGenres(genres []string) string {
	return strings.Join(genres, ", ")
}

func str(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func num(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}
