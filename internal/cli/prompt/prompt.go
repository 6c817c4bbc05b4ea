// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// Prompter asks the user a question and returns the trimmed answer.
// An empty answer means the user declined.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, question string) (string, error)

// Prompt calls f.
func (f PrompterFunc) Prompt(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// Static returns a Prompter that always answers with answer.
func Static(answer string) Prompter {
	return PrompterFunc(func(context.Context, string) (string, error) {
		return strings.TrimSpace(answer), nil
	})
}

// LinePrompter reads a single line of input per question.
type LinePrompter struct {
	reader io.Reader
	writer io.Writer
}

// NewLinePrompter creates a LinePrompter using stdin and stdout.
func NewLinePrompter() *LinePrompter {
	return &LinePrompter{
		reader: os.Stdin,
		writer: os.Stdout,
	}
}

// NewLinePrompterWithIO creates a LinePrompter with custom reader and writer for testing.
func NewLinePrompterWithIO(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{
		reader: r,
		writer: w,
	}
}

// Prompt writes question and blocks until a line or EOF is read.
//
// When the reader is a terminal the answer is read without echo, since the
// only thing this tool asks for is a credential. EOF yields whatever was typed
// so far, which may be empty.
func (p *LinePrompter) Prompt(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fmt.Fprint(p.writer, question)

	if f, ok := p.reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		// ReadPassword swallows the newline the user typed.
		fmt.Fprintln(p.writer)
		if err != nil {
			return "", errors.Wrap(err, "reading input")
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(p.reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}
