package shell

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/nathoo/navishell/types"
)

// ErrNotResolvable means a path cannot be mapped inside the sandbox.
// Callers report it exactly like a missing file.
var ErrNotResolvable = errors.New("path not resolvable inside sandbox")

// Resolve maps a simulated path onto a real path under root. Relative
// targets are joined to cwd. A target whose normalized form climbs with
// "..", or whose real path leaves root, fails with ErrNotResolvable.
// The returned virtual path is absolute and clean.
func Resolve(root, cwd, target string) (realPath, virtual string, err error) {
	if target == "" {
		target = "."
	}
	if cwd == "" {
		cwd = "/"
	}

	if !path.IsAbs(target) {
		if rel := path.Clean(target); rel == ".." || strings.HasPrefix(rel, "../") {
			return "", "", ErrNotResolvable
		}
		target = path.Join(cwd, target)
	}
	virtual = path.Clean(target)
	if !strings.HasPrefix(virtual, "/") {
		return "", "", ErrNotResolvable
	}

	realPath = filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(virtual, "/")))
	if !within(root, realPath) {
		return "", "", ErrNotResolvable
	}

	// Symlinks inside the sandbox must not point out of it.
	if resolved, err := filepath.EvalSymlinks(realPath); err == nil {
		rootResolved, rerr := filepath.EvalSymlinks(root)
		if rerr != nil {
			rootResolved = root
		}
		if !within(rootResolved, resolved) {
			return "", "", ErrNotResolvable
		}
	}
	return realPath, virtual, nil
}

// within reports whether p is root or a descendant of it.
func within(root, p string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// parentOf walks up from cwd once per ".." segment, stopping at "/".
func parentOf(cwd string, ups int) string {
	dir := path.Clean(cwd)
	for i := 0; i < ups && dir != "/"; i++ {
		dir = path.Dir(dir)
	}
	return dir
}

// onlyParents reports how many ".." segments target is made of, or 0 if it
// contains anything else.
func onlyParents(target string) int {
	n := 0
	for _, seg := range strings.Split(strings.Trim(target, "/"), "/") {
		if seg != ".." {
			return 0
		}
		n++
	}
	return n
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

type access int

const (
	accessList access = iota
	accessRead
)

// permitted checks every permission prefix covering virtual. Any single
// denial wins.
func permitted(perms []types.Permission, virtual string, op access, credit int) bool {
	for _, p := range perms {
		if !covers(p.Prefix, virtual) {
			continue
		}
		need := p.ListLevel
		if op == accessRead {
			need = p.ReadLevel
		}
		if credit < need {
			return false
		}
	}
	return true
}

// covers matches whole path segments, so "/sec" does not cover "/secret".
func covers(prefix, virtual string) bool {
	prefix = path.Clean("/" + prefix)
	if prefix == "/" {
		return true
	}
	return virtual == prefix || strings.HasPrefix(virtual, prefix+"/")
}
