package prompt

import (
	"strings"
	"testing"

	"github.com/hpkotak/lexbud/internal/provider"
	"github.com/hpkotak/lexbud/internal/sections"
)

func singleUserTurn(t *testing.T, task Task) string {
	t.Helper()
	if len(task.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(task.Messages))
	}
	if task.Messages[0].Role != provider.RoleUser {
		t.Fatalf("role = %q, want user", task.Messages[0].Role)
	}
	return task.Messages[0].Content
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		params  SummaryParams
		want    []string
		notWant []string
	}{
		{
			name:    "plain",
			params:  SummaryParams{Text: "  El contrato fue rescindido.  "},
			want:    []string{`"El contrato fue rescindido."`, "## :blue[Puntos Clave Legales]", "## :green[Decisiones y Fallos]", "## :orange[Notas Adicionales]"},
			notWant: []string{"en un contexto de", "Enfócate especialmente"},
		},
		{
			name:   "case type and decision focus",
			params: SummaryParams{Text: "Sentencia.", CaseType: "Family Law", DecisionFocus: true},
			want:   []string{"textos legales en un contexto de Family Law,", "Enfócate especialmente en la decisión del tribunal."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := Summary(tt.params)
			if err != nil {
				t.Fatalf("Summary() error: %v", err)
			}
			if task.Name != TaskSummarize {
				t.Errorf("Name = %q, want %q", task.Name, TaskSummarize)
			}
			got := singleUserTurn(t, task)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("prompt missing %q:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("prompt unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestDraftClauses(t *testing.T) {
	task, err := Draft(DraftParams{
		DocumentType: " Contract ",
		Clauses:      []string{"Confidencialidad", "   ", "Jurisdicción"},
		Template:     "Partes, objeto, precio",
	})
	if err != nil {
		t.Fatalf("Draft() error: %v", err)
	}
	got := singleUserTurn(t, task)

	want := []string{
		"crea un Contract utilizando",
		`Plantilla: "Partes, objeto, precio"`,
		"- **Cláusula 1**: Confidencialidad\n- **Cláusula 2**: Jurisdicción",
		"## :blue[Borrador de Contract]",
		"## :green[Cláusulas Sugeridas]\n- **Cláusula 1**: Confidencialidad",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("prompt missing %q:\n%s", w, got)
		}
	}
	if strings.Contains(got, "**Cláusula 3**") {
		t.Error("blank clause was numbered")
	}
}

func TestDraftWithoutTemplate(t *testing.T) {
	task, err := Draft(DraftParams{DocumentType: "Pleading"})
	if err != nil {
		t.Fatalf("Draft() error: %v", err)
	}
	if got := singleUserTurn(t, task); strings.Contains(got, "Plantilla:") {
		t.Errorf("prompt contains template line without template:\n%s", got)
	}
}

func TestResearch(t *testing.T) {
	task, err := Research(ResearchParams{Query: "¿Prescripción de deudas laborales?"})
	if err != nil {
		t.Fatalf("Research() error: %v", err)
	}
	got := singleUserTurn(t, task)
	for _, w := range []string{"Ley Argentina", `"¿Prescripción de deudas laborales?"`, "## :orange[Conclusiones]"} {
		if !strings.Contains(got, w) {
			t.Errorf("prompt missing %q", w)
		}
	}
}

func TestValidation(t *testing.T) {
	if _, err := Summary(SummaryParams{Text: " \n "}); err == nil {
		t.Error("Summary() with blank text: expected error")
	}
	if _, err := Draft(DraftParams{}); err == nil {
		t.Error("Draft() without document type: expected error")
	}
	if _, err := Research(ResearchParams{Query: ""}); err == nil {
		t.Error("Research() with empty query: expected error")
	}
}

// The headings each template requests must be recognized by its layout.
func TestTemplateHeadingsMatchLayouts(t *testing.T) {
	tests := []struct {
		name  string
		build func() (Task, error)
		body  map[string]string
	}{
		{
			name:  "summary",
			build: func() (Task, error) { return Summary(SummaryParams{Text: "x"}) },
			body: map[string]string{
				"Puntos Clave Legales": "key_points",
				"Decisiones y Fallos":  "decisions",
				"Notas Adicionales":    "notes",
			},
		},
		{
			name:  "research",
			build: func() (Task, error) { return Research(ResearchParams{Query: "x"}) },
			body: map[string]string{
				"Jurisprudencia relevante": "case_law",
				"Análisis de precedentes":  "precedents",
				"Conclusiones":             "conclusions",
			},
		},
		{
			name:  "draft",
			build: func() (Task, error) { return Draft(DraftParams{DocumentType: "Agreement"}) },
			body: map[string]string{
				"Borrador de Agreement": "draft",
				"Cláusulas Sugeridas":   "clauses",
				"Notas":                 "notes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.build()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			var answer strings.Builder
			for heading, key := range tt.body {
				answer.WriteString("## :blue[" + heading + "]\n" + key + " body\n\n")
			}
			got := sections.PostProcess(answer.String(), task.Layout)
			for _, key := range tt.body {
				if got[key] != key+" body" {
					t.Errorf("section %q = %q, want %q", key, got[key], key+" body")
				}
			}
		})
	}
}
