package docconv

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// run is one formatted text span within a paragraph.
type run struct {
	text   string
	bold   bool
	italic bool
	mono   bool
	br     bool // explicit line break instead of text
}

// paragraph is one block of the generated document.
type paragraph struct {
	style string // "" or Heading1..Heading6
	runs  []run
}

// ToDocx renders Markdown content as a .docx document.
func ToDocx(markdown string) ([]byte, error) {
	paras := blocksFromMarkdown(markdown)
	return buildDocx(paras)
}

// SectionsToDocx renders a titled, multi-section document: one level-1
// heading for the title, then a level-2 heading and body per section. Used
// for the combined report download.
func SectionsToDocx(title string, sections []Section) ([]byte, error) {
	paras := []paragraph{{style: "Heading1", runs: []run{{text: title}}}}
	for _, s := range sections {
		paras = append(paras, paragraph{style: "Heading2", runs: []run{{text: s.Label}}})
		paras = append(paras, blocksFromMarkdown(s.Text)...)
	}
	return buildDocx(paras)
}

// blocksFromMarkdown parses Markdown and flattens it into paragraphs.
func blocksFromMarkdown(markdown string) []paragraph {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var paras []paragraph
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		paras = append(paras, blockToParagraphs(node, src)...)
	}
	return paras
}

func blockToParagraphs(node ast.Node, src []byte) []paragraph {
	switch n := node.(type) {
	case *ast.Heading:
		level := n.Level
		if level > 6 {
			level = 6
		}
		return []paragraph{{
			style: fmt.Sprintf("Heading%d", level),
			runs:  collectRuns(n, src, false, false),
		}}

	case *ast.Paragraph, *ast.TextBlock:
		return []paragraph{{runs: collectRuns(node, src, false, false)}}

	case *ast.List:
		var paras []paragraph
		index := n.Start
		if index == 0 {
			index = 1
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "- "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", index)
				index++
			}
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				childParas := blockToParagraphs(child, src)
				for i := range childParas {
					if i == 0 && childParas[i].style == "" {
						childParas[i].runs = append([]run{{text: marker}}, childParas[i].runs...)
					}
					paras = append(paras, childParas[i])
				}
			}
		}
		return paras

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var runs []run
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(src)), "\n")
			if i > 0 {
				runs = append(runs, run{br: true})
			}
			runs = append(runs, run{text: line, mono: true})
		}
		return []paragraph{{runs: runs}}

	case *ast.Blockquote:
		var paras []paragraph
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			paras = append(paras, blockToParagraphs(child, src)...)
		}
		return paras

	case *ast.ThematicBreak:
		return []paragraph{{runs: []run{{text: "---"}}}}

	default:
		// Unhandled block kinds degrade to their inline text.
		runs := collectRuns(node, src, false, false)
		if len(runs) == 0 {
			return nil
		}
		return []paragraph{{runs: runs}}
	}
}

// collectRuns gathers the inline content of a block node as formatted runs.
func collectRuns(node ast.Node, src []byte, bold, italic bool) []run {
	var runs []run
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			runs = append(runs, run{text: string(n.Segment.Value(src)), bold: bold, italic: italic})
			if n.SoftLineBreak() || n.HardLineBreak() {
				runs = append(runs, run{br: true})
			}
		case *ast.String:
			runs = append(runs, run{text: string(n.Value), bold: bold, italic: italic})
		case *ast.Emphasis:
			childRuns := collectRuns(n, src, bold || n.Level >= 2, italic || n.Level == 1)
			runs = append(runs, childRuns...)
		case *ast.CodeSpan:
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					runs = append(runs, run{text: string(t.Segment.Value(src)), mono: true})
				}
			}
		case *ast.Link, *ast.Image:
			runs = append(runs, collectRuns(n, src, bold, italic)...)
		case *ast.AutoLink:
			runs = append(runs, run{text: string(n.URL(src)), bold: bold, italic: italic})
		default:
			runs = append(runs, collectRuns(n, src, bold, italic)...)
		}
	}
	return runs
}

// buildDocx assembles the minimal OPC package around word/document.xml.
func buildDocx(paras []paragraph) ([]byte, error) {
	return buildPackage(documentXML(paras))
}

func buildPackage(document string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", document},
	}

	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create package part %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("failed to write package part %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

// documentXML renders the WordprocessingML body.
func documentXML(paras []paragraph) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for _, p := range paras {
		b.WriteString("<w:p>")
		if p.style != "" {
			b.WriteString(`<w:pPr><w:pStyle w:val="` + p.style + `"/></w:pPr>`)
		}
		for _, r := range p.runs {
			if r.br {
				b.WriteString("<w:r><w:br/></w:r>")
				continue
			}
			if r.text == "" {
				continue
			}
			b.WriteString("<w:r>")
			if r.bold || r.italic || r.mono {
				b.WriteString("<w:rPr>")
				if r.bold {
					b.WriteString("<w:b/>")
				}
				if r.italic {
					b.WriteString("<w:i/>")
				}
				if r.mono {
					b.WriteString(`<w:rFonts w:ascii="Courier New" w:hAnsi="Courier New"/>`)
				}
				b.WriteString("</w:rPr>")
			}
			b.WriteString(`<w:t xml:space="preserve">` + xmlEscape(r.text) + `</w:t></w:r>`)
		}
		b.WriteString("</w:p>")
	}

	b.WriteString("</w:body></w:document>")
	return b.String()
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="36"/></w:rPr></w:style><w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:pPr><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="30"/></w:rPr></w:style><w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:pPr><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:sz w:val="26"/></w:rPr></w:style></w:styles>`
