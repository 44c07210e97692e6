package parser

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Input
	}{
		{"empty", "", Input{}},
		{"whitespace", "   \t", Input{}},
		{"choice", "2", Input{Kind: KindChoice, Choice: 2, Line: "2"}},
		{"choice padded", "  10 \n", Input{Kind: KindChoice, Choice: 10, Line: "10"}},
		{"zero is a choice", "0", Input{Kind: KindChoice, Choice: 0, Line: "0"}},
		{"negative is a choice", "-1", Input{Kind: KindChoice, Choice: -1, Line: "-1"}},
		{"command", "ls /home", Input{Kind: KindCommand, Line: "ls /home"}},
		{"number with text", "1 2", Input{Kind: KindCommand, Line: "1 2"}},
		{"float", "1.5", Input{Kind: KindCommand, Line: "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.input); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
	}{
		{"blank", "", Command{}},
		{"single", "help", Command{Name: "help", Typed: "help", Args: []string{}}},
		{"args", "cat notes.txt", Command{Name: "cat", Typed: "cat", Args: []string{"notes.txt"}}},
		{"upper verb", "LS /Home", Command{Name: "ls", Typed: "ls", Args: []string{"/Home"}}},
		{"quoted arg", `cat "my notes.txt"`, Command{Name: "cat", Typed: "cat", Args: []string{"my notes.txt"}}},
		{"single quotes", `examine 'old desk'`, Command{Name: "examine", Typed: "examine", Args: []string{"old desk"}}},
		{"alias inv", "inv", Command{Name: "inventory", Typed: "inv", Args: []string{}}},
		{"alias cls", "CLS", Command{Name: "clear", Typed: "cls", Args: []string{}}},
		{"mail read", "mail read 1", Command{Name: "mail", Typed: "mail", Args: []string{"read", "1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.line)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.line, err)
			}
			if got.Name != tt.want.Name || got.Typed != tt.want.Typed {
				t.Errorf("Tokenize(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
			if len(got.Args) != len(tt.want.Args) || (len(got.Args) > 0 && !reflect.DeepEqual(got.Args, tt.want.Args)) {
				t.Errorf("Args = %q, want %q", got.Args, tt.want.Args)
			}
		})
	}
}

func TestTokenize_UnterminatedQuote(t *testing.T) {
	if _, err := Tokenize(`cat "notes.txt`); err == nil {
		t.Error("expected error for unterminated quote")
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical("inv"); got != "inventory" {
		t.Errorf("Canonical(inv) = %q", got)
	}
	if got := Canonical("cmake"); got != "cmake" {
		t.Errorf("Canonical(cmake) = %q", got)
	}
}

func TestSpellings(t *testing.T) {
	got := Spellings("clear")
	if len(got) != 2 || got[0] != "clear" || got[1] != "cls" {
		t.Errorf("Spellings(clear) = %v", got)
	}
	if got := Spellings("ls"); len(got) != 1 {
		t.Errorf("Spellings(ls) = %v", got)
	}
}
