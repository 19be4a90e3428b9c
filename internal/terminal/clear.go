// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package terminal reads credentials from the terminal and tidies up after
// prompts.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// linesFor returns how many rows text of the given length occupies at width.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	n := int(math.Ceil(float64(textLength) / float64(width)))
	if n < 1 {
		n = 1
	}
	return n
}

// ClearPreviousLines erases a prompt and its echoed answer. textLength is
// the prompt plus input length; one more row is cleared for the newline the
// user typed.
func ClearPreviousLines(textLength int) {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	rows := linesFor(textLength, width) + 1
	for i := 0; i < rows; i++ {
		fmt.Print("\r\x1b[2K")
		if i < rows-1 {
			fmt.Print("\x1b[1A")
		}
	}
}

// Prompter asks for input on a terminal, falling back to plain line reads
// when stdin is not a TTY (pipes, CI).
type Prompter struct {
	in  *os.File
	out io.Writer
	rd  *bufio.Reader
}

// NewPrompter prompts on stdout and reads from stdin.
func NewPrompter() *Prompter {
	return &Prompter{in: os.Stdin, out: os.Stdout, rd: bufio.NewReader(os.Stdin)}
}

// Line reads one visible line.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.rd.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// Password reads a line without echo when stdin is a terminal.
func (p *Prompter) Password(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
