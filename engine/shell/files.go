package shell

import (
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/types"
)

const (
	cmakeMarker   = "CMakeLists.txt"
	cmakeMakefile = "# This is a simulated Makefile.\nall:\n\t@echo Nothing to be done."
)

func (in *Interpreter) ls(args []string, s *types.PlayerState) (string, bool) {
	target := s.Cwd
	if len(args) > 0 {
		target = args[0]
	}

	realPath, virtual, err := Resolve(in.Root, s.Cwd, target)
	if err != nil || !isDir(realPath) {
		notify.Error(in.Out, "ls: cannot access '%s': No such file or directory", target)
		return "", false
	}
	if !permitted(in.Defs.Permissions, virtual, accessList, s.CreditLevel) {
		notify.Error(in.Out, "ls: cannot open directory '%s': Permission denied", target)
		return "", false
	}

	entries, err := os.ReadDir(realPath)
	if err != nil {
		in.Log.Error("reading sandbox directory", "path", realPath, "error", err)
		notify.Error(in.Out, "ls: cannot access '%s': No such file or directory", target)
		return "", false
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > 0 {
		notify.Text(in.Out, "%s", strings.Join(names, "\n"))
	}
	return "", false
}

func (in *Interpreter) cd(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	target := args[0]

	if ups := onlyParents(target); ups > 0 {
		s.Cwd = parentOf(s.Cwd, ups)
		return "", false
	}

	realPath, virtual, err := Resolve(in.Root, s.Cwd, target)
	if err != nil || !isDir(realPath) {
		notify.Error(in.Out, "cd: no such file or directory: %s", target)
		return "", false
	}
	s.Cwd = virtual
	return "", false
}

func (in *Interpreter) cat(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 {
		notify.Error(in.Out, "cat: missing operand")
		return "", false
	}
	target := args[0]

	realPath, virtual, err := Resolve(in.Root, s.Cwd, target)
	if err != nil || !isFile(realPath) {
		notify.Error(in.Out, "cat: %s: No such file or directory", target)
		return "", false
	}
	if !permitted(in.Defs.Permissions, virtual, accessRead, s.CreditLevel) {
		notify.Error(in.Out, "cat: %s: Permission denied", target)
		return "", false
	}

	data, err := os.ReadFile(realPath)
	if err != nil {
		in.Log.Error("reading sandbox file", "path", realPath, "error", err)
		notify.Error(in.Out, "cat: %s: No such file or directory", target)
		return "", false
	}
	notify.Text(in.Out, "%s", strings.TrimRight(string(data), "\n"))
	return "", false
}

func (in *Interpreter) pwd(_ []string, s *types.PlayerState) (string, bool) {
	notify.Text(in.Out, "%s", s.Cwd)
	return "", false
}

// cmakeTranscript is the scripted configure output with the pause before
// each line.
var cmakeTranscript = []struct {
	delay time.Duration
	line  string
}{
	{500 * time.Millisecond, "-- The CXX compiler identification is GNU 10.2.1"},
	{500 * time.Millisecond, "-- Check for working CXX compiler: /usr/bin/c++ - works"},
	{200 * time.Millisecond, "-- Detecting CXX compiler ABI info - done"},
	{300 * time.Millisecond, "-- Configuring done"},
	{0, "-- Generating done"},
}

func (in *Interpreter) cmake(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 || args[0] != "." {
		notify.Error(in.Out, "Usage: cmake .")
		return "", false
	}

	marker, _, err := Resolve(in.Root, s.Cwd, cmakeMarker)
	if err != nil || !isFile(marker) {
		notify.Error(in.Out, "CMake Error: The source directory does not appear to contain CMakeLists.txt.")
		return "", false
	}

	for _, step := range cmakeTranscript {
		in.pause(step.delay)
		notify.Text(in.Out, "%s", step.line)
	}
	notify.Text(in.Out, "-- Build files have been written to: %s", path.Join(s.Cwd, "build"))

	makefile, _, err := Resolve(in.Root, s.Cwd, "Makefile")
	if err != nil {
		return "", false
	}
	if err := os.WriteFile(makefile, []byte(cmakeMakefile), 0o644); err != nil {
		in.Log.Error("writing placeholder makefile", "path", makefile, "error", err)
	}
	return "", false
}
