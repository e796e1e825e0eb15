package docconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, markdown string) string {
	t.Helper()
	data, err := ToDocx(markdown)
	require.NoError(t, err)
	out, err := FromDocx(data)
	require.NoError(t, err)
	return out
}

func TestRoundTrip_HeadingsAndParagraphs(t *testing.T) {
	in := "# Klassenarbeit 3\n\nAufgabe eins: erläutere den Wasserkreislauf.\n\n## Bewertung\n\nMaximal 15 Punkte.\n"
	assert.Equal(t, in, roundTrip(t, in))
}

func TestRoundTrip_Lists(t *testing.T) {
	in := "## Aufgaben\n\n- Verdunstung beschreiben\n- Kondensation beschreiben\n- Niederschlag beschreiben\n"
	// extraction emits one block per paragraph, so the list comes back loose
	want := "## Aufgaben\n\n- Verdunstung beschreiben\n\n- Kondensation beschreiben\n\n- Niederschlag beschreiben\n"
	assert.Equal(t, want, roundTrip(t, in))
}

func TestRoundTrip_OrderedListKeepsNumbers(t *testing.T) {
	in := "1. erste Aufgabe\n2. zweite Aufgabe\n"
	out := roundTrip(t, in)
	assert.Contains(t, out, "1. erste Aufgabe")
	assert.Contains(t, out, "2. zweite Aufgabe")
}

func TestToDocx_EmphasisFormatsRuns(t *testing.T) {
	data, err := ToDocx("Das ist **wichtig** und das ist *kursiv*.")
	require.NoError(t, err)

	// formatting markers do not survive extraction, the text does
	out, err := FromDocx(data)
	require.NoError(t, err)
	assert.Equal(t, "Das ist wichtig und das ist kursiv.\n", out)
}

func TestToDocx_EscapesMarkup(t *testing.T) {
	data, err := ToDocx("Gilt für x < 10 & y > 2.")
	require.NoError(t, err)
	out, err := FromDocx(data)
	require.NoError(t, err)
	assert.Equal(t, "Gilt für x < 10 & y > 2.\n", out)
}

func TestFromDocx_RejectsNonDocx(t *testing.T) {
	_, err := FromDocx([]byte("%PDF-1.7 not a word file"))
	assert.ErrorIs(t, err, ErrNotDocx)
}

func TestFromDocx_EmptyDocument(t *testing.T) {
	data, err := ToDocx("")
	require.NoError(t, err)
	_, err = FromDocx(data)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestFromDocx_LocalizedHeadingStyles(t *testing.T) {
	// German Word installations emit "berschrift1" style ids
	doc := docWithParagraph(`<w:pPr><w:pStyle w:val="berschrift2"/></w:pPr><w:r><w:t>Bewertung</w:t></w:r>`)
	out, err := FromDocx(doc)
	require.NoError(t, err)
	assert.Equal(t, "## Bewertung\n", out)
}

func TestFromDocx_NumberedParagraphsBecomeListLines(t *testing.T) {
	doc := docWithParagraph(`<w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>Erster Punkt</w:t></w:r>`)
	out, err := FromDocx(doc)
	require.NoError(t, err)
	assert.Equal(t, "- Erster Punkt\n", out)
}

func TestSectionsToDocx_CombinesSections(t *testing.T) {
	data, err := SectionsToDocx("Bericht: Lena M.", []Section{
		{Label: "Lernstand", Text: "Solide Grundlagen in Bruchrechnung."},
		{Label: "Empfehlung", Text: "- Übungsblatt 4\n- Wiederholung Kapitel 2"},
	})
	require.NoError(t, err)

	out, err := FromDocx(data)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Bericht: Lena M.\n"))
	assert.Contains(t, out, "## Lernstand\n")
	assert.Contains(t, out, "Solide Grundlagen in Bruchrechnung.")
	assert.Contains(t, out, "## Empfehlung\n")
	assert.Contains(t, out, "- Übungsblatt 4")
}

func TestToDocx_DistinctContents(t *testing.T) {
	a, err := ToDocx("# Arbeit A\n\nInhalt A.")
	require.NoError(t, err)
	b, err := ToDocx("# Arbeit B\n\nInhalt B.")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

// docWithParagraph wraps one WordprocessingML paragraph body in a minimal
// package, bypassing ToDocx so reader-only paths can be exercised.
func docWithParagraph(inner string) []byte {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p>` + inner + `</w:p></w:body></w:document>`
	data, err := buildPackage(body)
	if err != nil {
		panic(err)
	}
	return data
}
