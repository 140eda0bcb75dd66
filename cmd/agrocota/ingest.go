package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/hazyhaar/agrocota/pkg/quote"
	"github.com/hazyhaar/agrocota/pkg/sheet"
)

type ingestOptions struct {
	file, url  string
	vocabulary string
	asJSON     bool
	timeout    time.Duration
	maxBytes   int64
	sheet      sheet.Options
}

func cmdIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	var opts ingestOptions
	var delimiter string
	fs.StringVar(&opts.file, "file", "", "spreadsheet file (.csv, .tsv, .txt, .xlsx)")
	fs.StringVar(&opts.url, "url", "", "download the spreadsheet from this URL")
	fs.StringVar(&delimiter, "delimiter", "", "CSV delimiter (default: auto-detect)")
	fs.StringVar(&opts.sheet.Encoding, "encoding", "", "CSV charset, e.g. windows-1252 (default: utf-8)")
	fs.StringVar(&opts.sheet.Sheet, "sheet", "", "workbook sheet name (default: first sheet)")
	fs.IntVar(&opts.sheet.MaxRows, "max-rows", 0, "stop after this many data rows (0 = all)")
	fs.StringVar(&opts.vocabulary, "vocabulary", "", "vocabulary YAML file (default: built-in)")
	fs.BoolVar(&opts.asJSON, "json", false, "print the full result as JSON")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "download timeout")
	fs.Int64Var(&opts.maxBytes, "max-bytes", 64<<20, "download size limit")
	fs.Parse(args)

	if delimiter != "" {
		opts.sheet.Delimiter, _ = utf8.DecodeRuneInString(delimiter)
	}
	if (opts.file == "") == (opts.url == "") {
		fmt.Fprintln(os.Stderr, "Usage: agrocota ingest -file <path> | -url <url> [-delimiter ;] [-encoding windows-1252] [-sheet name] [-json]")
		os.Exit(1)
	}

	if err := runIngest(context.Background(), os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context, w io.Writer, opts ingestOptions) error {
	vocab := quote.DefaultVocabulary()
	if opts.vocabulary != "" {
		v, err := quote.LoadVocabulary(opts.vocabulary)
		if err != nil {
			return err
		}
		vocab = v
	}

	var (
		grid quote.RawGrid
		err  error
	)
	if opts.url != "" {
		ctx, cancel := context.WithTimeout(ctx, opts.timeout)
		defer cancel()
		data, name, ferr := sheet.Fetch(ctx, opts.url, opts.maxBytes)
		if ferr != nil {
			return ferr
		}
		grid, err = sheet.Read(name, bytes.NewReader(data), opts.sheet)
	} else {
		grid, err = sheet.ReadFile(opts.file, opts.sheet)
	}
	if err != nil {
		return err
	}

	res := vocab.Ingest(grid)
	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if err := printResult(w, res); err != nil {
		return err
	}
	if len(res.Items) == 0 {
		return errors.New("no valid rows found")
	}
	return nil
}

func printResult(w io.Writer, res *quote.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSUPPLIER\tCATEGORY\tPRICE/HA\tDOSE\tUNIT")
	for _, it := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			it.Product, it.Supplier, it.Category, it.PricePerArea, it.Dose, it.Unit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := res.Summary
	fmt.Fprintf(w, "\n%d items (%d rows read, %d dropped): %d products, %d suppliers, %d categories\n",
		s.Items, res.RowsRead, res.RowsDropped, s.Products, s.Suppliers, s.Categories)
	for _, c := range s.ByCategory {
		fmt.Fprintf(w, "  %-14s %d\n", c.Category, c.Items)
	}
	return nil
}
