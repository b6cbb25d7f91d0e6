package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks questions on an interactive console
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewPrompter creates a prompter reading answers from r and writing questions to w.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// Ask prints question and returns the trimmed answer. io.EOF is returned only when
// the input ended before any answer was typed.
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprint(p.w, question)

	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(p.w)
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskDefault is Ask with a fallback for a blank answer
func (p *Prompter) AskDefault(question, fallback string) (string, error) {
	answer, err := p.Ask(question)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return fallback, nil
	}
	return answer, nil
}
