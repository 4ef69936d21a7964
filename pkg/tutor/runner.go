package tutor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// InputSource feeds user lines into the conversation loop. Implementations
// return io.EOF when no more input will come.
type InputSource interface {
	ReadLine() (string, error)
}

type readerInput struct {
	scanner *bufio.Scanner
}

// NewReaderInput wraps a reader (typically os.Stdin) as an InputSource.
func NewReaderInput(r io.Reader) InputSource {
	return &readerInput{scanner: bufio.NewScanner(r)}
}

func (r *readerInput) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// Run drives the conversation until the user types "quit" or the input
// source is exhausted. Failed questions are reported and the loop
// continues; the session history stays consistent because Ask rolls back
// the failed user turn.
func (s *Session) Run(ctx context.Context, input InputSource, output io.Writer) error {
	fmt.Fprintln(output, "AITA: Hello, my name is AITA, your friendly AI academic assistant. How can I help you?")

	for {
		s.state = StateAwaitingInput
		fmt.Fprint(output, "You: ")

		line, err := input.ReadLine()
		if err != nil {
			s.state = StateEnded
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if IsQuit(line) {
			s.state = StateEnded
			fmt.Fprintln(output, "Thanks for chatting! Have a nice day!")
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		answer, citations, err := s.Ask(ctx, line)
		if err != nil {
			fmt.Fprintf(output, "AITA: I encountered an error: %v\n", err)
			continue
		}

		fmt.Fprintln(output, "AITA:", answer)
		for _, c := range citations {
			fmt.Fprintf(output, "  [Source %d] %s\n", c.Rank, c.Course)
		}
	}
}
