package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pangan/internal/app"
	"pangan/internal/config"
	"pangan/internal/ingest"
	"pangan/internal/logx"
	"pangan/internal/model"
)

func main() {
	fs := flag.NewFlagSet("importer", flag.ExitOnError)
	seriesName := fs.String("series", "food", "target series: food or index")
	country := fs.String("country", "", "country id, code or name for rows without a country column")
	food := fs.String("food", "", "food id or name for rows without a food column")
	file := fs.String("file", "", "CSV file with a header row (- reads stdin)")
	actor := fs.String("actor", "importer", "user recorded as creator / updater")
	dryRun := fs.Bool("dry-run", false, "validate and print inflation without storing")
	fs.Usage = usage
	fs.Parse(os.Args[1:])

	if err := run(*seriesName, *country, *food, *file, *actor, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "import failed:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: importer -file prices.csv [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options:")
	fmt.Fprintln(os.Stderr, "  -series    food or index (default: food)")
	fmt.Fprintln(os.Stderr, "  -country   default country for every row")
	fmt.Fprintln(os.Stderr, "  -food      default food for every row")
	fmt.Fprintln(os.Stderr, "  -file      CSV file, - for stdin")
	fmt.Fprintln(os.Stderr, "  -actor     recorded user (default: importer)")
	fmt.Fprintln(os.Stderr, "  -dry-run   validate only")
}

func run(seriesName, country, food, file, actor string, dryRun bool) error {
	series, err := model.ParseSeries(seriesName)
	if err != nil {
		return err
	}
	if strings.TrimSpace(file) == "" {
		return errors.New("-file is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment(), Level: cfg.LogLevel})

	rows, err := readRows(file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	batch := ingest.Batch{Series: series, Country: country, Food: food, Actor: actor, Rows: rows}

	if dryRun {
		preview, err := a.Ingest.Preview(ctx, batch)
		if err != nil {
			return err
		}
		return printPreview(os.Stdout, preview)
	}

	saved, err := a.Ingest.Import(ctx, batch)
	if err != nil {
		return err
	}
	fmt.Printf("stored %d %s rows\n", len(saved), series)
	return nil
}

func readRows(file string) ([]ingest.Row, error) {
	var r io.Reader = os.Stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return parseCSV(r)
}

// parseCSV keys every record by the lower-cased header.
func parseCSV(r io.Reader) ([]ingest.Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	var rows []ingest.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(ingest.Row, len(header))
		for i, value := range record {
			if i < len(header) && header[i] != "" {
				row[header[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func printPreview(w io.Writer, rows []model.PriceInflation) error {
	for _, row := range rows {
		rate := "-"
		if row.InflationRate != nil {
			rate = strconv.FormatFloat(*row.InflationRate, 'f', 2, 64) + "%"
		}
		closePrice := "-"
		if row.Close != nil {
			closePrice = strconv.FormatFloat(*row.Close, 'f', -1, 64)
		}
		if _, err := fmt.Fprintf(w, "%s\t%d-%s\tclose=%s\tinflation=%s\n",
			row.Date.Format(model.DateLayout), row.Year, row.MonthCode(), closePrice, rate); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d rows valid, nothing stored\n", len(rows))
	return err
}
