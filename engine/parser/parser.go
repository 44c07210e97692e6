// Package parser classifies raw player input.
// Intentionally dumb: a bare integer picks a choice, anything else is a
// shell command line split by shell quoting rules.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the classification of one line of input.
type Kind int

const (
	KindEmpty Kind = iota
	KindChoice
	KindCommand
)

// Input is a classified line of player input.
type Input struct {
	Kind   Kind
	Choice int    // 1-based, set for KindChoice
	Line   string // trimmed input
}

// commandAliases maps typed shorthands to canonical command names.
var commandAliases = map[string]string{
	"inv": "inventory",
	"cls": "clear",
}

// Classify decides whether input selects a choice or is a command line.
func Classify(input string) Input {
	line := strings.TrimSpace(input)
	if line == "" {
		return Input{}
	}
	if n, err := strconv.Atoi(line); err == nil {
		return Input{Kind: KindChoice, Choice: n, Line: line}
	}
	return Input{Kind: KindCommand, Line: line}
}

// Command is a tokenized shell command.
type Command struct {
	Name  string   // canonical name after folding and aliasing
	Typed string   // first word as folded, before aliasing
	Args  []string // remaining words, unmodified
}

// Tokenize splits a command line with shell quoting rules. An unterminated
// quote is an error. A blank line yields a zero Command and no error.
func Tokenize(line string) (Command, error) {
	words, err := shlex.Split(line)
	if err != nil {
		return Command{}, fmt.Errorf("tokenizing %q: %w", line, err)
	}
	if len(words) == 0 {
		return Command{}, nil
	}

	typed := Fold(words[0])
	return Command{
		Name:  Canonical(typed),
		Typed: typed,
		Args:  words[1:],
	}, nil
}

// Fold lower-cases a command word.
func Fold(word string) string {
	return cases.Lower(language.Und).String(word)
}

// Canonical applies command aliases to a folded word.
func Canonical(word string) string {
	if alias, ok := commandAliases[word]; ok {
		return alias
	}
	return word
}

// Spellings returns a canonical name followed by every alias for it.
func Spellings(name string) []string {
	out := []string{name}
	for alias, canonical := range commandAliases {
		if canonical == name {
			out = append(out, alias)
		}
	}
	return out
}
