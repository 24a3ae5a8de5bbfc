// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package prompt asks the operator whether a connection may proceed.
//
// Every prompter blocks until answered. The caller runs inside the packet
// queue callback, so while a question is open no further packets are read
// and the kernel holds them in the queue.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// DefaultAffirmative is the only answer that allows a connection.
const DefaultAffirmative = "y"

// Styles accepted by New.
const (
	StyleLine = "line"
	StyleForm = "form"
	StyleAuto = "auto"
)

// Request describes the connection awaiting a decision.
type Request struct {
	Process     string
	PID         string
	Source      netip.Addr
	Destination netip.Addr
	// Country is an optional ISO code for the destination.
	Country string
}

// StatusLine renders the one-line summary shown before the question.
func StatusLine(req Request) string {
	line := fmt.Sprintf("%s (pid %s) %s -> %s", req.Process, req.PID, req.Source, req.Destination)
	if req.Country != "" {
		line += " [" + req.Country + "]"
	}
	return line
}

// LinePrompter reads one line of text per question and compares it literally
// against the affirmative token.
type LinePrompter struct {
	in          *bufio.Reader
	out         io.Writer
	affirmative string
	title       lipgloss.Style
}

// NewLinePrompter creates a prompter on in/out. An empty affirmative uses DefaultAffirmative.
func NewLinePrompter(in io.Reader, out io.Writer, affirmative string) *LinePrompter {
	if affirmative == "" {
		affirmative = DefaultAffirmative
	}
	r := lipgloss.NewRenderer(out)
	return &LinePrompter{
		in:          bufio.NewReader(in),
		out:         out,
		affirmative: affirmative,
		title:       r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

// Confirm prints the status line and reads the answer. Only the exact
// affirmative token returns true; the line terminator is the only thing stripped.
func (p *LinePrompter) Confirm(ctx context.Context, req Request) (bool, error) {
	fmt.Fprintln(p.out, p.title.Render(StatusLine(req)))
	fmt.Fprintf(p.out, "Allow connection? [%s/N]: ", p.affirmative)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return false, err
	}
	return strings.TrimRight(line, "\r\n") == p.affirmative, nil
}

// FormPrompter shows a charmbracelet/huh confirm dialog.
type FormPrompter struct {
	accessible bool
}

// NewFormPrompter creates a form prompter. Accessible mode replaces the
// interactive widget with plain text questions.
func NewFormPrompter(accessible bool) *FormPrompter {
	return &FormPrompter{accessible: accessible}
}

// Confirm runs the dialog until the operator picks Allow or Deny.
func (p *FormPrompter) Confirm(ctx context.Context, req Request) (bool, error) {
	var allow bool
	confirm := huh.NewConfirm().
		Title(StatusLine(req)).
		Description("Allow this connection?").
		Affirmative("Allow").
		Negative("Deny").
		Value(&allow)

	form := huh.NewForm(huh.NewGroup(confirm)).WithAccessible(p.accessible)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return allow, nil
}

// Prompter is the common behaviour of LinePrompter and FormPrompter.
type Prompter interface {
	Confirm(ctx context.Context, req Request) (bool, error)
}

// New picks a prompter for style. An empty style means StyleLine. StyleAuto
// uses the form only when stdin is a terminal and the affirmative token is
// the default, since the form has no token to type.
func New(style, affirmative string, in *os.File, out io.Writer) (Prompter, error) {
	if style == StyleAuto {
		style = resolveAuto(term.IsTerminal(int(in.Fd())), affirmative)
	}
	switch style {
	case "", StyleLine:
		return NewLinePrompter(in, out, affirmative), nil
	case StyleForm:
		return NewFormPrompter(false), nil
	default:
		return nil, fmt.Errorf("unknown prompt style %q", style)
	}
}

func resolveAuto(terminal bool, affirmative string) string {
	if terminal && (affirmative == "" || affirmative == DefaultAffirmative) {
		return StyleForm
	}
	return StyleLine
}
