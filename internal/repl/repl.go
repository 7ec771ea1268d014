// Package repl implements the interactive research console.
//
// Every line is an independent single-shot request: no conversation history
// is kept between queries.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hpkotak/lexbud/internal/console"
	"github.com/hpkotak/lexbud/internal/prompt"
	"github.com/hpkotak/lexbud/internal/provider"
)

// Dispatcher streams one request into a sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, req provider.Request, sink provider.Sink) (*provider.Result, error)
}

// Options configures a console session.
type Options struct {
	// Model starts empty to use the dispatcher default.
	Model string
	// Live streams text as it arrives.
	Live bool
}

// Run starts the interactive loop. It returns on exit, EOF or a read error.
func Run(ctx context.Context, d Dispatcher, opts Options, in io.Reader, out, errOut io.Writer) error {
	_, _ = fmt.Fprintln(out, "lexbud research console (type 'exit' to quit, '/help' for commands)")
	_, _ = fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	model := opts.Model

	for {
		_, _ = fmt.Fprint(out, "lex> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				_, _ = fmt.Fprintf(out, "\nInput error: %v\n", err)
				return err
			}
			_, _ = fmt.Fprintln(out)
			return nil // EOF (Ctrl+D)
		}

		input := strings.TrimSpace(scanner.Text())
		switch {
		case input == "":
			continue
		case input == "exit" || input == "quit":
			_, _ = fmt.Fprintln(out, "Bye!")
			return nil
		case input == "/help":
			printHelp(out)
			continue
		case input == "/model":
			if model == "" {
				_, _ = fmt.Fprintln(out, "Model: (default)")
			} else {
				_, _ = fmt.Fprintf(out, "Model: %s\n", model)
			}
			continue
		case strings.HasPrefix(input, "/model "):
			model = strings.TrimSpace(strings.TrimPrefix(input, "/model "))
			_, _ = fmt.Fprintf(out, "Model set to %s\n", model)
			continue
		}

		task, err := taskFor(input)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}

		ask(ctx, d, model, task, opts.Live, out, errOut)
		_, _ = fmt.Fprintln(out)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// taskFor maps a console line to a task. Plain text is a research query.
func taskFor(input string) (prompt.Task, error) {
	if rest, ok := strings.CutPrefix(input, "/summarize"); ok {
		return prompt.Summary(prompt.SummaryParams{Text: rest})
	}
	if strings.HasPrefix(input, "/") {
		cmd, _, _ := strings.Cut(input, " ")
		return prompt.Task{}, fmt.Errorf("unknown command %s", cmd)
	}
	return prompt.Research(prompt.ResearchParams{Query: input})
}

func ask(ctx context.Context, d Dispatcher, model string, task prompt.Task, live bool, out, errOut io.Writer) {
	printer := &console.Printer{Out: out, ErrOut: errOut, Live: live}
	_, _ = fmt.Fprintln(out)

	result, err := d.Dispatch(ctx, provider.Request{
		Model:    model,
		Messages: task.Messages,
		Layout:   task.Layout,
	}, printer)
	if err != nil {
		var unsupported *provider.UnsupportedModelError
		if errors.As(err, &unsupported) {
			_, _ = fmt.Fprintf(out, "Error: %v (use /model to pick another)\n", err)
			return
		}
		_, _ = fmt.Fprintf(out, "Error: %v\n", err)
		return
	}
	printer.Finish(result, task.Layout)
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "  <query>            research case law for the query")
	_, _ = fmt.Fprintln(out, "  /summarize <text>  summarize a legal text")
	_, _ = fmt.Fprintln(out, "  /model [name]      show or switch the model")
	_, _ = fmt.Fprintln(out, "  exit               quit")
}
