package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type readResult struct {
	line string
	err  error
}

// lineReader reads from r in a background goroutine, one read per request,
// so a blocked read can be abandoned when the context is cancelled. Nothing
// is consumed from r until a caller asks for a line.
type lineReader struct {
	br      *bufio.Reader
	reqs    chan func() (string, error)
	results chan readResult
	pending bool
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{
		br:      bufio.NewReader(r),
		reqs:    make(chan func() (string, error)),
		results: make(chan readResult, 1),
	}
	go lr.loop()
	return lr
}

func (lr *lineReader) loop() {
	for read := range lr.reqs {
		line, err := read()
		lr.results <- readResult{line: line, err: err}
	}
}

func (lr *lineReader) readLine() (string, error) {
	line, err := lr.br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input closed: %w", ErrUnavailable)
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// next blocks until a line arrives, input ends, or ctx is done.
func (lr *lineReader) next(ctx context.Context) (string, error) {
	return lr.do(ctx, lr.readLine)
}

// do runs read on the reader goroutine. A read abandoned by an earlier
// cancellation is collected before a new one is issued.
func (lr *lineReader) do(ctx context.Context, read func() (string, error)) (string, error) {
	if !lr.pending {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case lr.reqs <- read:
			lr.pending = true
		}
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-lr.results:
		lr.pending = false
		return res.line, res.err
	}
}
