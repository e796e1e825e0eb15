package docconv

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// FromDocx extracts the text of a .docx document as Markdown. Paragraph
// styles named HeadingN map to Markdown headings, numbered/bulleted
// paragraphs map to "- " list lines, explicit line breaks are preserved.
func FromDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrNotDocx
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", ErrNotDocx
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document body: %w", err)
	}
	defer rc.Close()

	return decodeDocumentXML(rc)
}

// decodeDocumentXML walks the WordprocessingML token stream and emits one
// Markdown block per paragraph.
func decodeDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		out      strings.Builder
		para     strings.Builder
		inText   bool
		heading  int
		listItem bool
	)

	flushParagraph := func() {
		text := strings.TrimRight(para.String(), " ")
		para.Reset()

		if strings.TrimSpace(text) == "" {
			heading, listItem = 0, false
			return
		}

		switch {
		case heading > 0:
			out.WriteString(strings.Repeat("#", heading) + " " + text)
		case listItem:
			out.WriteString("- " + text)
		default:
			out.WriteString(text)
		}
		out.WriteString("\n\n")
		heading, listItem = 0, false
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pStyle":
				heading = headingLevel(attrValue(t, "val"))
			case "numPr":
				listItem = true
			case "t":
				inText = true
			case "br", "cr":
				para.WriteString("\n")
			case "tab":
				para.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flushParagraph()
			}
		}
	}

	result := strings.TrimRight(out.String(), "\n")
	if result == "" {
		return "", ErrEmptyDocument
	}
	return result + "\n", nil
}

// headingLevel maps a paragraph style id to a Markdown heading level.
// Both English ("Heading1") and localized ("berschrift1") style ids are
// produced by Word depending on the installation language.
func headingLevel(style string) int {
	for _, prefix := range []string{"Heading", "berschrift"} {
		if rest, ok := strings.CutPrefix(style, prefix); ok {
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
