package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/jotter/pkg/core"
)

// promptConfirmer asks on out and reads a y/N answer from in.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func newConfirmer(in io.Reader, out io.Writer, assumeYes bool) core.Confirmer {
	if assumeYes {
		return core.AlwaysConfirm
	}
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (p *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(p.out, "%s [y/N] ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
