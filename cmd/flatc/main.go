// Command flatc is the schema compiler's driver: it reads a schema,
// parses and lays it out, then renders one of five actions' worth of Go
// source (or a debug dump) to an output file or stdout — or, given a
// fourth argument, fans one file per flat out into a directory instead.
//
// Usage: `flatc <action> [<input-file> [<output-file> [<output-dir>]]]`.
// The action is required; a missing input file reads stdin and a missing
// output file writes stdout.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flatlang/flatc/internal/ir"
	"github.com/flatlang/flatc/pkg/codegen"
	"github.com/flatlang/flatc/pkg/layout"
	"github.com/flatlang/flatc/pkg/parser"
	"github.com/flatlang/flatc/pkg/schema"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("flatc: no arguments; usage: flatc <action> [<input-file> [<output-file> [<output-dir>]]]")
	}
	if len(args) > 4 {
		return fmt.Errorf("flatc: too many arguments")
	}

	action, err := codegen.ParseAction(args[0])
	if err != nil {
		return fmt.Errorf("flatc: %w", err)
	}

	inPath, outPath, outDir := "", "", ""
	if len(args) > 1 {
		inPath = args[1]
	}
	if len(args) > 2 {
		outPath = args[2]
	}
	if len(args) > 3 {
		outDir = args[3]
	}

	in, closeIn, err := openInput(inPath, stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	src, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("flatc: reading input: %w", err)
	}

	name := inPath
	if name == "" {
		name = "<stdin>"
	}
	prog, err := parser.Parse(string(src), name)
	if err != nil {
		return err
	}
	if err := layout.Program(prog); err != nil {
		return err
	}
	warnTombstonedViewFields(prog, slog.New(slog.NewTextHandler(stderr, nil)))

	if outDir != "" {
		return runFanout(prog, action, outDir)
	}

	out, closeOut, err := openOutput(outPath, stdout)
	if err != nil {
		return err
	}
	defer closeOut()

	text, err := codegen.Generate(prog, action)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("flatc: writing output: %w", err)
	}
	return w.Flush()
}

// warnTombstonedViewFields logs a non-fatal warning for every view whose
// field list still carries a field marked deprecating or deleted. The
// schema compiles fine either way — a tombstoned field carries no Type and
// the accessor emitter skips it via LiveFields — but a view that copied a
// whole flat's field list, or named a removed field explicitly, is holding
// a reference into storage its base flat no longer backs.
func warnTombstonedViewFields(prog *ir.Program, logger *slog.Logger) {
	for _, id := range prog.Order {
		view := prog.Table.Flat(id)
		if view.Kind != schema.ViewKind {
			continue
		}
		base := prog.Table.Flat(view.Underlying)
		for _, fld := range view.Fields {
			if fld.Status.IsTombstone() {
				logger.Warn("view references a removed field",
					"view", view.Name, "base", base.Name, "field", fld.Name, "status", fld.Status.String())
			}
		}
	}
}

// runFanout renders one file per flat/variant/view/enum/message into dir
// instead of writing a single concatenated stream, creating dir (and any
// missing parents) first.
func runFanout(prog *ir.Program, action codegen.Action, dir string) error {
	files, err := codegen.GenerateFiles(prog, action)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("flatc: creating output directory %q: %w", dir, err)
	}
	for name, text := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			return fmt.Errorf("flatc: writing %q: %w", name, err)
		}
	}
	return nil
}

// openInput opens name for reading, or falls back to stdin when name is
// empty — get_input's contract, but the returned closer is always safe to
// call (a no-op for stdin), where the original leaked every file it
// opened because nothing ever called delete on isp/osp before main's
// normal-exit paths.
func openInput(name string, stdin io.Reader) (io.Reader, func() error, error) {
	if name == "" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("flatc: can't open input file %q: %w", name, err)
	}
	return f, f.Close, nil
}

func openOutput(name string, stdout io.Writer) (io.Writer, func() error, error) {
	if name == "" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, fmt.Errorf("flatc: can't open output file %q: %w", name, err)
	}
	return f, f.Close, nil
}
