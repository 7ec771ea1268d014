package console

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hpkotak/lexbud/internal/provider"
	"github.com/hpkotak/lexbud/internal/sections"
)

func TestPrinterLiveWritesSuffixes(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &Printer{Out: &out, ErrOut: &errOut, Live: true}

	p.Update("La" + provider.Cursor)
	p.Update("La corte" + provider.Cursor)
	p.Update("La corte falló.")
	p.Finish(&provider.Result{Text: "La corte falló."}, nil)

	assert.Equal(t, "La corte falló.\n", out.String())
	assert.Empty(t, errOut.String())
	assert.False(t, p.Failed())
}

func TestPrinterLiveFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	p := &Printer{Out: &out, ErrOut: &errOut, Live: true}

	p.Update("par" + provider.Cursor)
	p.Update("par")
	p.Fail("API Error: local stream: out of memory")
	p.Finish(nil, nil)

	assert.Equal(t, "par\n", out.String())
	assert.Equal(t, "API Error: local stream: out of memory\n", errOut.String())
	assert.True(t, p.Failed())
}

func TestPrinterBufferedPrintsFinalOnly(t *testing.T) {
	var out bytes.Buffer
	p := &Printer{Out: &out, ErrOut: &bytes.Buffer{}}

	p.Update("Hola" + provider.Cursor)
	p.Update("Hola mundo")
	assert.Empty(t, out.String())

	p.Finish(&provider.Result{Text: "Hola mundo\n"}, nil)
	assert.Equal(t, "Hola mundo\n", out.String())
}

func TestPrinterBufferedStructured(t *testing.T) {
	var out bytes.Buffer
	p := &Printer{Out: &out, ErrOut: &bytes.Buffer{}}

	p.Finish(&provider.Result{
		Text:     "ignored raw text",
		Sections: sections.Result{"decisions": "Dismissed.", "key_points": "- Breach"},
	}, sections.Summary)

	want := "== Key Legal Points ==\n- Breach\n\n== Decisions and Judgments ==\nDismissed.\n"
	assert.Equal(t, want, out.String())
}

func TestPrintSectionsUnknownTitle(t *testing.T) {
	var out bytes.Buffer
	layout := sections.Layout{{Key: "custom", Markers: []string{"Custom"}}}

	PrintSections(&out, sections.Result{"custom": ""}, layout)

	assert.Equal(t, "== custom ==\n", out.String())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	assert.False(t, IsTerminal(f))
}
