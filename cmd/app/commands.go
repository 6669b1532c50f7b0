package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/starford/metron/internal/catalog"
	"github.com/starford/metron/internal/engine"
	"github.com/starford/metron/internal/parser"
)

func convertCommand(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 4 {
		return fmt.Errorf("convert: expected <category> <from> <to> <value>, got %d arguments", args.Len())
	}
	req := engine.Request{
		Category: catalog.Normalize(args.Get(0)),
		From:     args.Get(1),
		To:       args.Get(2),
	}
	return printConversion(os.Stdout, engine.Default(), req, args.Get(3), cmd.Bool("swap"), cmd.Bool("lenient"))
}

func printConversion(w io.Writer, eng *engine.Engine, req engine.Request, rawValue string, swap, lenient bool) error {
	v, err := parser.ParseStrict(rawValue)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	req.Value = v
	if swap {
		req = req.Swap()
	}

	var res engine.Result
	if lenient {
		res = eng.Lenient(req)
	} else if res, err = eng.Do(req); err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	_, err = fmt.Fprintln(w, res.Formula)
	return err
}

func unitsCommand(_ context.Context, cmd *cli.Command) error {
	return printUnits(os.Stdout, catalog.Default(), cmd.Args().First())
}

func printUnits(w io.Writer, cat *catalog.Catalog, category string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if category == "" {
		fmt.Fprintln(tw, "CATEGORY\tLABEL\tUNITS")
		for _, e := range cat.Entries() {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Category, e.Label, len(e.Units()))
		}
		return tw.Flush()
	}

	e, err := cat.Lookup(catalog.Category(catalog.Normalize(category)))
	if err != nil {
		return fmt.Errorf("units: %w", err)
	}
	fmt.Fprintln(tw, "ID\tLABEL")
	for _, u := range e.Units() {
		fmt.Fprintf(tw, "%s\t%s\n", u.ID, u.Label)
	}
	return tw.Flush()
}
