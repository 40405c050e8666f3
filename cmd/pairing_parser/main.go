// Command-line entry point for the pairing parser.
//
// Note about input
// ----------------
// Page text extraction from the PDF happens upstream; this tool consumes
// JSONL where each line is {"page": N, "text": "..."} with newline-separated
// page text, and emits one CSV row per flight leg.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pairing_parser/internal/builder"
	"pairing_parser/internal/export"
	"pairing_parser/internal/feed"
	"pairing_parser/internal/filter"
	"pairing_parser/internal/pairing"
	"pairing_parser/internal/schedule"
	"pairing_parser/internal/storage"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "pairing_parser - commands:")
	fmt.Fprintln(w, "  extract  - parse bid package page text (JSONL) and output CSV")
	fmt.Fprintln(w, "  archive  - query a local leg archive")
	fmt.Fprintln(w, "  runs     - list recent extraction runs from the run history")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pairing_parser extract -input pages.jsonl [-output legs.csv] [-start-page 7]")
	fmt.Fprintln(w, "      [-end-page 0] [-aircraft 777,787] [-workers 4] [-archive legs.db]")
	fmt.Fprintln(w, "      [-db] [-nats nats://localhost:4222] [-subject pairings.extracted] [-stats]")
	fmt.Fprintln(w, "  pairing_parser archive -path legs.db [-sequence N] [-aircraft 777] [-stats]")
	fmt.Fprintln(w, "  pairing_parser runs [-limit 20]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Input must be JSONL (one {\"page\":N,\"text\":\"...\"} object per line).")
	fmt.Fprintln(w, "  - end-page 0 means the last page present in the input.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "extract":
		runExtractCmd(os.Args[2:])
	case "archive":
		runArchiveCmd(os.Args[2:])
	case "runs":
		runRunsCmd(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runExtractCmd(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("input", "", "Input JSONL file (default: stdin)")
	outPath := fs.String("output", "", "Output CSV file (default: stdout)")
	startPage := fs.Int("start-page", 7, "First page to parse (1-indexed; bid packages open with front matter)")
	endPage := fs.Int("end-page", 0, "Last page to parse (0 = last page in input)")
	aircraft := fs.String("aircraft", "", "Comma-separated aircraft types to keep (default: no filter, keep all)")
	workers := fs.Int("workers", 4, "Parallel page parse workers")
	archivePath := fs.String("archive", "", "Also append rows to a local SQLite archive at this path")
	useDB := fs.Bool("db", false, "Also write legs to ClickHouse and record the run in PostgreSQL")
	natsURL := fs.String("nats", "", "Also publish each pairing to this NATS server")
	natsSubject := fs.String("subject", feed.DefaultSubject, "NATS subject for published pairings")
	source := fs.String("source", "", "Source label for storage (default: input file name)")
	showStats := fs.Bool("stats", false, "Print run counters to stderr")
	_ = fs.Parse(args)

	started := time.Now().UTC()
	ctx := context.Background()

	wanted, err := filter.ParseTags(*aircraft)
	if err != nil {
		fatal("Invalid -aircraft: %v", err)
	}

	var r io.Reader = os.Stdin
	srcLabel := *source
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fatal("Failed to open input: %v", err)
		}
		defer f.Close()
		r = f
		if srcLabel == "" {
			srcLabel = *inPath
		}
	}
	if srcLabel == "" {
		srcLabel = "stdin"
	}

	provider, err := pairing.LoadJSONL(r)
	if err != nil {
		fatal("Failed to read input: %v", err)
	}

	end := *endPage
	if end == 0 {
		end = provider.MaxPage()
	}

	var publisher *feed.Publisher
	if *natsURL != "" {
		publisher, err = feed.Connect(*natsURL, *natsSubject)
		if err != nil {
			fatal("Failed to connect to NATS: %v", err)
		}
		defer func() { _ = publisher.Close() }()
	}

	var rows []pairing.Row
	b := builder.New(func(p *pairing.Pairing) error {
		if !filter.Keep(p, wanted) {
			return nil
		}
		rows = append(rows, p.Rows()...)
		if publisher != nil {
			return publisher.Publish(p)
		}
		return nil
	})

	opts := schedule.Options{
		Workers:   *workers,
		StartPage: *startPage,
		EndPage:   end,
		OnPageError: func(page int, err error) {
			fmt.Fprintf(os.Stderr, "Warning: page %d failed: %v\n", page, err)
		},
	}
	if err := schedule.Run(ctx, provider, opts, b); err != nil {
		fatal("Parse failed: %v", err)
	}
	summary, err := b.Close()
	if err != nil {
		fatal("Parse failed: %v", err)
	}

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fatal("Failed to create output: %v", err)
		}
		defer f.Close()
		wout = f
	}
	if err := export.WriteCSV(wout, rows); err != nil {
		fatal("Failed to write output: %v", err)
	}

	if *archivePath != "" {
		archive, err := storage.OpenArchive(*archivePath)
		if err != nil {
			fatal("Failed to open archive: %v", err)
		}
		defer func() { _ = archive.Close() }()
		if err := archive.InsertRows(srcLabel, rows); err != nil {
			fatal("Failed to archive rows: %v", err)
		}
	}

	if *useDB {
		db, err := storage.Open(ctx, storage.DefaultConfig())
		if err != nil {
			fatal("Failed to open databases: %v", err)
		}
		defer func() { _ = db.Close() }()
		if err := db.CreateSchemas(ctx); err != nil {
			fatal("Failed to create schemas: %v", err)
		}
		if err := db.CH.InsertRows(ctx, srcLabel, rows); err != nil {
			fatal("Failed to write legs: %v", err)
		}
		tagLabel := strings.Join(wanted, ",")
		if tagLabel == "" {
			tagLabel = "all"
		}
		if _, err := db.PG.RecordRun(ctx, storage.RunRecord{
			Source:        srcLabel,
			StartPage:     *startPage,
			EndPage:       end,
			AircraftTypes: tagLabel,
			Summary:       summary,
			StartedAt:     started,
		}); err != nil {
			fatal("Failed to record run: %v", err)
		}
	}

	if *showStats {
		fmt.Fprintf(os.Stderr,
			"stats: pages=%d failed=%d unparsed_lines=%d dropped=%d flagged=%d pairings=%d rows=%d kept_rows=%d\n",
			summary.PagesParsed, summary.FailedPages, summary.UnparsedLines,
			summary.DroppedPairings, summary.FlaggedPairings,
			summary.EmittedPairings, summary.EmittedRows, len(rows),
		)
	}
}

func runArchiveCmd(args []string) {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	path := fs.String("path", "", "SQLite archive path (required)")
	sequence := fs.String("sequence", "", "Filter by pairing sequence number")
	aircraft := fs.String("aircraft", "", "Filter by aircraft type")
	limit := fs.Int("limit", 100, "Max rows to print")
	showStats := fs.Bool("stats", false, "Print archive statistics instead of rows")
	_ = fs.Parse(args)

	if *path == "" {
		fatal("archive: -path is required")
	}
	archive, err := storage.OpenArchive(*path)
	if err != nil {
		fatal("Failed to open archive: %v", err)
	}
	defer func() { _ = archive.Close() }()

	if *showStats {
		stats, err := archive.GetStats()
		if err != nil {
			fatal("Failed to read stats: %v", err)
		}
		fmt.Printf("total legs: %d\n", stats.TotalLegs)
		for typ, n := range stats.ByAircraftType {
			fmt.Printf("  %s: %d\n", typ, n)
		}
		for src, n := range stats.BySource {
			fmt.Printf("  %s: %d\n", src, n)
		}
		return
	}

	rows, err := archive.Query(storage.ArchiveQueryParams{
		Sequence:     *sequence,
		AircraftType: *aircraft,
		Limit:        *limit,
	})
	if err != nil {
		fatal("Query failed: %v", err)
	}
	if err := export.WriteCSV(os.Stdout, rows); err != nil {
		fatal("Failed to write output: %v", err)
	}
}

func runRunsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Max runs to list")
	_ = fs.Parse(args)

	ctx := context.Background()
	pg, err := storage.OpenPostgres(ctx, storage.DefaultConfig().Postgres)
	if err != nil {
		fatal("Failed to open run history: %v", err)
	}
	defer pg.Close()

	runs, err := pg.RecentRuns(ctx, *limit)
	if err != nil {
		fatal("Failed to list runs: %v", err)
	}
	for _, r := range runs {
		fmt.Printf("%d  %s  pages %d-%d  pairings=%d rows=%d flagged=%d failed_pages=%d  %s\n",
			r.ID, r.Source, r.StartPage, r.EndPage,
			r.Summary.EmittedPairings, r.Summary.EmittedRows,
			r.Summary.FlaggedPairings, r.Summary.FailedPages,
			r.FinishedAt.Format(time.RFC3339))
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
