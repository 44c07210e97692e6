// Package story parses story scripts into renderable documents.
//
// A script is UTF-8 text with optional front matter, literal prose,
// pause directives, choice lines, and inline JSON blocks that branch on
// player state. Parsing never fails: defects degrade to literal text.
package story

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/navishell/types"
)

const frontMatterDelim = "---"

// Markers that make a choice render but reject selection.
var unselectableMarkers = []string{"(unavailable)", "(无法选择)"}

var (
	choicePattern = regexp.MustCompile(`^-\s*\[([^\]]*)\]\(action:(.*?)\)`)
	pausePattern  = regexp.MustCompile(`^\[PAUSE:([\d.]+)\]$`)
)

// ParseFile reads and parses a script. A missing or unreadable file yields
// a single error line, no choices, and empty metadata.
func ParseFile(path string, s *types.PlayerState) types.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Document{
			Content:  []types.ContentItem{textItem(fmt.Sprintf("Error: story file not found: %s", path))},
			Metadata: map[string]string{},
		}
	}
	return Parse(string(data), s)
}

// Parse converts script source into a document for the given state.
func Parse(source string, s *types.PlayerState) types.Document {
	doc := types.Document{Metadata: map[string]string{}}
	p := &docParser{doc: &doc, state: s}

	lines := splitLines(source)
	lines = parseFrontMatter(lines, doc.Metadata)

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		stripped := strings.TrimSpace(line)

		// Comments.
		if strings.HasPrefix(stripped, "<!--") {
			continue
		}

		// Combinatorial block.
		if stripped == "{" {
			p.flush()
			i = p.readBlock(lines, i)
			continue
		}

		// Terminal choice.
		if m := choicePattern.FindStringSubmatch(stripped); m != nil {
			p.flush()
			p.addChoice(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
			continue
		}

		// Pause.
		if m := pausePattern.FindStringSubmatch(stripped); m != nil {
			p.flush()
			secs, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				p.buf = append(p.buf, line)
				continue
			}
			doc.Content = append(doc.Content, types.ContentItem{Kind: types.ContentPause, Seconds: secs})
			continue
		}

		p.buf = append(p.buf, line)
	}
	p.flush()

	doc.Content = dropBlank(doc.Content)
	return doc
}

// docParser carries the in-progress document and the literal text buffer.
type docParser struct {
	doc   *types.Document
	state *types.PlayerState
	buf   []string
}

func (p *docParser) flush() {
	if len(p.buf) == 0 {
		return
	}
	p.doc.Content = append(p.doc.Content, textItem(strings.Join(p.buf, "")))
	p.buf = nil
}

func (p *docParser) addChoice(text, action string) {
	p.doc.Choices = append(p.doc.Choices, types.Choice{
		Text:     text,
		Action:   action,
		Disabled: isUnselectable(text),
	})
}

// readBlock accumulates lines from start until they form a complete JSON
// object, resolves it, and returns the index of the last consumed line.
// Running out of input appends the raw accumulation as literal text.
func (p *docParser) readBlock(lines []string, start int) int {
	var raw strings.Builder
	raw.WriteString(lines[start])

	for i := start + 1; i < len(lines); i++ {
		raw.WriteString(lines[i])
		block, complete := decodeBlock(raw.String())
		if !complete {
			continue
		}
		text, choices := block.resolve(p.state)
		if text != "" {
			p.doc.Content = append(p.doc.Content, textItem(text))
		}
		for _, c := range choices {
			p.addChoice(c.Text, c.Action)
		}
		return i
	}

	p.doc.Content = append(p.doc.Content, textItem(raw.String()))
	return len(lines) - 1
}

// parseFrontMatter collects metadata when the first line is a bare
// delimiter and returns the remaining body lines. Without front matter the
// input is returned unchanged.
func parseFrontMatter(lines []string, meta map[string]string) []string {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelim {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		stripped := strings.TrimSpace(lines[i])
		if stripped == frontMatterDelim {
			return lines[i+1:]
		}
		key, value, ok := strings.Cut(stripped, ":")
		if ok {
			meta[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
	return nil
}

// splitLines splits source into lines, keeping line terminators so joined
// prose keeps its layout.
func splitLines(source string) []string {
	if source == "" {
		return nil
	}
	lines := strings.SplitAfter(source, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// dropBlank removes whitespace-only text items. Pauses are always kept.
func dropBlank(items []types.ContentItem) []types.ContentItem {
	out := items[:0]
	for _, it := range items {
		if it.Kind == types.ContentText && strings.TrimSpace(it.Text) == "" {
			continue
		}
		out = append(out, it)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isUnselectable(text string) bool {
	for _, m := range unselectableMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func textItem(text string) types.ContentItem {
	return types.ContentItem{Kind: types.ContentText, Text: text}
}
