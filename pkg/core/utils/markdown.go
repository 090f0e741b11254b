package utils

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// RenderHTML converts GitHub-flavoured markdown, tables included, to HTML.
func RenderHTML(input string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EscapeCell makes a value safe inside a markdown table cell.
func EscapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

// CountTables parses input and returns the number of GFM tables in it.
func CountTables(input string) int {
	src := []byte(input)
	doc := markdown.Parser().Parse(text.NewReader(src))
	n := 0
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind().String() == "Table" {
			n++
		}
	}
	return n
}
