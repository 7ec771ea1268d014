// Package prompt builds the single-turn requests for the legal tasks.
// Each task asks the model for fixed markdown headings so the response can
// be split into sections afterwards.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/hpkotak/lexbud/internal/provider"
	"github.com/hpkotak/lexbud/internal/sections"
)

// Task names accepted by ByName.
const (
	TaskSummarize = "summarize"
	TaskDraft     = "draft"
	TaskResearch  = "research"
)

// CaseTypes are the selectable case contexts for summaries.
var CaseTypes = []string{"Contract Law", "Criminal Law", "Family Law", "Corporate Law", "Other"}

// DocumentTypes are the selectable drafts.
var DocumentTypes = []string{"Contract", "Agreement", "Pleading", "Other"}

// Task is a ready-to-dispatch prompt.
type Task struct {
	Name     string
	Messages []provider.Message
	Layout   sections.Layout
}

// SummaryParams configures a legal document summary.
type SummaryParams struct {
	Text          string `json:"text"`
	CaseType      string `json:"case_type,omitempty"`
	DecisionFocus bool   `json:"decision_focus,omitempty"`
}

// DraftParams configures a legal document draft.
type DraftParams struct {
	DocumentType string   `json:"document_type"`
	Clauses      []string `json:"clauses,omitempty"`
	Template     string   `json:"template,omitempty"`
}

// ResearchParams configures a case law search.
type ResearchParams struct {
	Query string `json:"query"`
}

var templates = template.Must(template.New("prompts").Funcs(sprig.TxtFuncMap()).Parse(`
{{- define "summary" -}}
Como asistente legal especializado en resumir textos legales{{ if .CaseType }} en un contexto de {{ .CaseType }}{{ end }}, resume el siguiente documento legal, extrayendo los puntos clave más importantes, los argumentos legales y las decisiones.{{ if .DecisionFocus }} Enfócate especialmente en la decisión del tribunal.{{ end }}

Documento:
"{{ trim .Text }}"

Por favor, organiza tu resumen en formato de viñetas con títulos claros:

## :blue[Puntos Clave Legales]
- **Punto 1**: [Resumen del punto clave]
- **Punto 2**: [Resumen del punto clave]
[Agrega más puntos según sea necesario]

## :green[Decisiones y Fallos]
- **Decisión 1**: [Resumen de la decisión o fallo del tribunal]
[Agrega más decisiones según sea necesario]

## :orange[Notas Adicionales]
- **Nota 1**: [Contexto adicional, si es necesario]
{{- end }}

{{- define "clauses" -}}
{{ range $i, $c := . }}
- **Cláusula {{ add1 $i }}**: {{ trim $c }}
{{- end }}
{{- end }}

{{- define "draft" -}}
Como asistente experto en redacción legal, crea un {{ .DocumentType }} utilizando la siguiente plantilla personalizable e incluye las cláusulas legales apropiadas:
{{ if .Template }}
Plantilla: "{{ trim .Template }}"
{{ end }}
A continuación, algunas cláusulas recomendadas para incluir:{{ template "clauses" .Clauses }}

Proporcione su respuesta en formato markdown como se indica a continuación:

## :blue[Borrador de {{ .DocumentType }}]
- **Introducción**: [Proporcione una introducción formal]
- **Cláusula 1**: [Contenido de la cláusula legal]
- **Cláusula 2**: [Contenido de la cláusula legal]
[Agregue más cláusulas según sea necesario]

## :green[Cláusulas Sugeridas]{{ template "clauses" .Clauses }}

## :orange[Notas]
- **Nota 1**: [Cualquier nota o contexto importante sobre el documento redactado]
{{- end }}

{{- define "research" -}}
Eres un asistente legal avanzado especializado en la Ley Argentina. Dada la siguiente consulta legal, por favor busca y presenta jurisprudencia relevante y analiza los precedentes que se aplican al caso.

Consulta legal:
"{{ trim .Query }}"

Proporcione su respuesta en el siguiente formato:

## :blue[Jurisprudencia relevante]
- **Caso 1**: [Descripción del caso relevante]
- **Caso 2**: [Descripción del caso relevante]
[Agregue más casos según sea necesario]

## :green[Análisis de precedentes]
- **Precedente 1**: [Explicación de cómo este precedente aplica a la consulta]
- **Precedente 2**: [Explicación de cómo este precedente aplica a la consulta]
[Agregue más precedentes según sea necesario]

## :orange[Conclusiones]
- [Conclusión basada en los casos analizados]
{{- end }}
`))

// Summary builds a summarization task.
func Summary(p SummaryParams) (Task, error) {
	if strings.TrimSpace(p.Text) == "" {
		return Task{}, fmt.Errorf("legal document text cannot be empty")
	}
	return build(TaskSummarize, "summary", p, sections.Summary)
}

// Draft builds a drafting task. Blank clauses are dropped.
func Draft(p DraftParams) (Task, error) {
	p.DocumentType = strings.TrimSpace(p.DocumentType)
	if p.DocumentType == "" {
		return Task{}, fmt.Errorf("document type cannot be empty")
	}
	var clauses []string
	for _, c := range p.Clauses {
		if strings.TrimSpace(c) != "" {
			clauses = append(clauses, c)
		}
	}
	p.Clauses = clauses
	return build(TaskDraft, "draft", p, sections.Draft)
}

// Research builds a case law research task.
func Research(p ResearchParams) (Task, error) {
	if strings.TrimSpace(p.Query) == "" {
		return Task{}, fmt.Errorf("research query cannot be empty")
	}
	return build(TaskResearch, "research", p, sections.Research)
}

func build(name, tmpl string, data any, layout sections.Layout) (Task, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, tmpl, data); err != nil {
		return Task{}, fmt.Errorf("rendering %s prompt: %w", name, err)
	}
	return Task{
		Name:     name,
		Messages: []provider.Message{{Role: provider.RoleUser, Content: b.String()}},
		Layout:   layout,
	}, nil
}
