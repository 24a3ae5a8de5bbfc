// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package cmd implements the sphinx subcommands.
package cmd

import (
	"fmt"
	"io"
	"os"
)

// Banner is printed when the firewall starts.
const Banner = "Sphinx - Keeps watch"

// Printer writes user-facing output. Logs go to stderr through the logger.
var Printer = NewPrinter(os.Stdout)

// ConsolePrinter prints to a writer.
type ConsolePrinter struct {
	out io.Writer
}

// NewPrinter creates a printer for out.
func NewPrinter(out io.Writer) *ConsolePrinter {
	return &ConsolePrinter{out: out}
}

func (p *ConsolePrinter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *ConsolePrinter) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

func (p *ConsolePrinter) Fprintf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
