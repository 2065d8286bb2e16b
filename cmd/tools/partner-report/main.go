// cmd/tools/partner-report/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"partner-dashboard/internal/dashboard/derive"
	"partner-dashboard/internal/dashboard/display"
	"partner-dashboard/internal/dashboard/tableview"
	"partner-dashboard/internal/dashboard/webhook"
	"partner-dashboard/internal/models"
)

type options struct {
	file      string
	view      string
	sort      string
	dir       string
	search    string
	category  string
	status    string
	minQuotes int
	minDays   int
	limit     int
	locale    string
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "Path to a webhook response dump (JSON)")
	flag.StringVar(&opts.view, "view", "all", "View to print (all, best, worst, sleeping)")
	flag.StringVar(&opts.sort, "sort", "", "Sort column (canonical field name, e.g. ertek_pontszam)")
	flag.StringVar(&opts.dir, "dir", "desc", "Sort direction (asc, desc)")
	flag.StringVar(&opts.search, "search", "", "Case-insensitive partner name filter")
	flag.StringVar(&opts.category, "category", "", "Category filter")
	flag.StringVar(&opts.status, "status", "all", "Status filter (all, active, sleeping)")
	flag.IntVar(&opts.minQuotes, "min-quotes", 0, "Minimum total quotes")
	flag.IntVar(&opts.minDays, "min-days", 0, "Minimum idle days (sleeping view only)")
	flag.IntVar(&opts.limit, "limit", 0, "Print at most this many rows (0 = all)")
	flag.StringVar(&opts.locale, "locale", "hu", "Collation locale for text columns")
	flag.Parse()

	if opts.file == "" {
		fmt.Println("Error: -file is required.")
		flag.Usage()
		os.Exit(1)
	}

	raw, err := os.ReadFile(opts.file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", opts.file, err)
		os.Exit(1)
	}

	if err := run(os.Stdout, raw, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, raw []byte, opts options) error {
	d, err := webhook.ParsePayload(raw, derive.Options{})
	if err != nil {
		return err
	}

	var rows []models.Partner
	defaultSort := tableview.FieldValueScore
	switch opts.view {
	case "", "all":
		rows = d.Partners
	case "best":
		rows = d.TopBest
	case "worst":
		rows = d.TopWorst
		defaultSort = tableview.FieldWasteScore
	case "sleeping":
		rows = derive.IdleAtLeast(d.Sleeping, opts.minDays)
		defaultSort = tableview.FieldDaysSinceLastQuote
	default:
		return fmt.Errorf("unknown view %q", opts.view)
	}

	st := tableview.DefaultState()
	st.Search = opts.search
	st.Category = opts.category
	st.MinQuotes = opts.minQuotes
	if st.Status, err = tableview.ParseStatus(opts.status); err != nil {
		return err
	}
	if st.SortField, err = tableview.ParseSortField(opts.sort, defaultSort); err != nil {
		return err
	}
	if st.Direction, err = tableview.ParseDirection(opts.dir, tableview.Desc); err != nil {
		return err
	}

	out := tableview.NewEngine(opts.locale).Apply(rows, st)
	shown := out
	if opts.limit > 0 && len(shown) > opts.limit {
		shown = shown[:opts.limit]
	}

	printTable(w, shown)
	fmt.Fprintf(w, "\n%d of %d partners (view=%s, sort=%s %s)\n", len(shown), len(rows), viewName(opts.view), st.SortField, st.Direction)
	return nil
}

func viewName(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

var headers = []string{"#", "Partner", "Ajánlat", "Siker", "Korr. arány", "Érték", "Veszteség", "Kategória", "Napok"}

// right-aligned columns
var numeric = map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 8: true}

func cells(p models.Partner) []string {
	return []string{
		strconv.Itoa(p.Rank),
		p.Name,
		strconv.Itoa(p.TotalQuotes),
		strconv.Itoa(p.SuccessfulQuotes),
		display.FormatPercent(p.AdjustedSuccessRate),
		display.FormatScore(p.ValueScore),
		display.FormatScore(p.WasteScore),
		models.CategoryLabel(p.Category),
		strconv.Itoa(p.DaysSinceLastQuote),
	}
}

// printTable aligns columns by display width so accented and wide
// characters line up.
func printTable(w io.Writer, ps []models.Partner) {
	table := make([][]string, 0, len(ps)+1)
	table = append(table, headers)
	for _, p := range ps {
		table = append(table, cells(p))
	}

	widths := make([]int, len(headers))
	for _, row := range table {
		for i, c := range row {
			if n := runewidth.StringWidth(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for r, row := range table {
		parts := make([]string, len(row))
		for i, c := range row {
			if numeric[i] {
				parts[i] = runewidth.FillLeft(c, widths[i])
			} else {
				parts[i] = runewidth.FillRight(c, widths[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
		if r == 0 {
			sep := make([]string, len(widths))
			for i, n := range widths {
				sep[i] = strings.Repeat("-", n)
			}
			fmt.Fprintln(w, strings.Join(sep, "  "))
		}
	}
}
