// Package setup handles interactive configuration: backend endpoints, the
// local model and the default model. Nothing is downloaded or written
// without explicit consent.
package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/hpkotak/lexbud/internal/config"
)

// Package-level function variables for testability.
var (
	loadConfig = config.Load
	saveConfig = config.Save
	getenv     = os.Getenv
)

const (
	probeTimeout = 10 * time.Second
	// Model pulls can be large (GBs).
	pullTimeout = 10 * time.Minute
)

// Run executes the interactive setup flow.
// in and out are injectable for testability.
func Run(ctx context.Context, in io.Reader, out io.Writer) error {
	_, _ = fmt.Fprintln(out, "lexbud setup")
	_, _ = fmt.Fprintln(out, "============")

	cfg, err := loadConfig()
	if errors.Is(err, config.ErrNotFound) {
		cfg = config.Default()
	} else if err != nil {
		return err
	}

	p := &prompter{r: bufio.NewReader(in), out: out}

	_, _ = fmt.Fprintln(out, "\nHosted backend (OpenAI-compatible)")
	cfg.Hosted.BaseURL = p.ask("Base URL", cfg.Hosted.BaseURL)
	if getenv(config.EnvHostedAPIKey) == "" {
		_, _ = fmt.Fprintf(out, "[!!] %s is not set. Export it or put it in .env to use hosted models.\n", config.EnvHostedAPIKey)
	} else {
		_, _ = fmt.Fprintf(out, "[ok] %s is set\n", config.EnvHostedAPIKey)
	}

	_, _ = fmt.Fprintln(out, "\nLocal backend (Ollama)")
	cfg.Local.URL = p.ask("Chat endpoint", cfg.Local.URL)
	cfg.Local.Model = p.ask("Local model", cfg.Local.Model)
	checkLocal(ctx, p, cfg.Local.URL, cfg.Local.Model)

	model, err := selectModel(p, cfg)
	if err != nil {
		return err
	}
	cfg.Model = model

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	_, _ = fmt.Fprintf(out, "\nConfig saved to %s\n", config.Path())
	_, _ = fmt.Fprintln(out, `Ready! Try: lexbud research "despido sin causa"`)
	return nil
}

// checkLocal probes the local server and offers to pull a missing model.
// Problems are reported but never fatal: the hosted backend may be all the
// user needs.
func checkLocal(ctx context.Context, p *prompter, endpoint, model string) {
	client, err := ollamaClient(endpoint)
	if err != nil {
		_, _ = fmt.Fprintf(p.out, "[!!] %v\n", err)
		return
	}

	listCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	models, err := client.List(listCtx)
	if err != nil {
		_, _ = fmt.Fprintln(p.out, "[!!] Local model server is not reachable. Start it with: ollama serve")
		return
	}
	_, _ = fmt.Fprintln(p.out, "[ok] Local model server is running")

	for _, m := range models.Models {
		if m.Name == model || m.Name == model+":latest" {
			_, _ = fmt.Fprintf(p.out, "[ok] %s is installed\n", model)
			return
		}
	}

	_, _ = fmt.Fprintf(p.out, "[!!] %s is not installed\n", model)
	if !p.confirm(fmt.Sprintf("Pull %s now?", model), false) {
		return
	}
	if err := pullModel(ctx, client, model, p.out); err != nil {
		_, _ = fmt.Fprintf(p.out, "[!!] %v\n", err)
	}
}

func pullModel(ctx context.Context, client *api.Client, model string, out io.Writer) error {
	_, _ = fmt.Fprintf(out, "Pulling %s (this may take a few minutes)...\n", model)

	ctx, cancel := context.WithTimeout(ctx, pullTimeout)
	defer cancel()

	err := client.Pull(ctx, &api.PullRequest{Model: model}, func(resp api.ProgressResponse) error {
		if resp.Total > 0 {
			pct := float64(resp.Completed) / float64(resp.Total) * 100
			_, _ = fmt.Fprintf(out, "\r  %.0f%% downloaded", pct)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("pulling model: %w", err)
	}
	_, _ = fmt.Fprintf(out, "\n[ok] %s ready\n", model)
	return nil
}

func selectModel(p *prompter, cfg *config.Config) (string, error) {
	selector := cfg.Selector()
	var choices []string
	for _, m := range cfg.CatalogueModels() {
		if _, err := selector.Classify(m); err == nil {
			choices = append(choices, m)
		}
	}
	if !containsModel(choices, cfg.Local.Model) {
		choices = append(choices, cfg.Local.Model)
	}

	_, _ = fmt.Fprintln(p.out, "\nAvailable models:")
	for i, m := range choices {
		backend, _ := selector.Classify(m)
		_, _ = fmt.Fprintf(p.out, "  %d. %s (%s)\n", i+1, m, backend)
	}

	input := p.ask("Select default model", "1")
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(choices) {
		return "", fmt.Errorf("invalid selection: %s", input)
	}

	selected := choices[n-1]
	_, _ = fmt.Fprintf(p.out, "[ok] Selected: %s\n", selected)
	return selected, nil
}

func containsModel(models []string, model string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}

// ollamaClient builds an API client for the server hosting endpoint.
func ollamaClient(endpoint string) (*api.Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("parsing local endpoint URL %q", endpoint)
	}
	base := &url.URL{Scheme: u.Scheme, Host: u.Host}
	httpClient := &http.Client{Timeout: probeTimeout}
	return api.NewClient(base, httpClient), nil
}

// prompter reads answers from one buffered reader so that no input is lost
// between questions.
type prompter struct {
	r   *bufio.Reader
	out io.Writer
}

// readLine reads a single line, trimming whitespace. EOF yields "".
func (p *prompter) readLine() string {
	line, _ := p.r.ReadString('\n')
	return strings.TrimSpace(line)
}

// ask prompts with a default shown in brackets.
func (p *prompter) ask(label, def string) string {
	if def != "" {
		_, _ = fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}
	if input := p.readLine(); input != "" {
		return input
	}
	return def
}

func (p *prompter) confirm(question string, defaultYes bool) bool {
	hint := "[Y/n]"
	if !defaultYes {
		hint = "[y/N]"
	}
	_, _ = fmt.Fprintf(p.out, "%s %s: ", question, hint)

	switch strings.ToLower(p.readLine()) {
	case "":
		return defaultYes
	case "y", "yes":
		return true
	default:
		return false
	}
}
