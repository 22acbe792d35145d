package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PathCompleter cycles through the directory entries matching a typed path.
// Candidates are computed on the first Next after a Reset and then reused.
type PathCompleter struct {
	candidates []string
	idx        int
}

// Reset drops the candidates. Call it whenever the input is edited.
func (c *PathCompleter) Reset() {
	c.candidates = nil
	c.idx = -1
}

// Candidates returns the current candidate list.
func (c *PathCompleter) Candidates() []string {
	return c.candidates
}

// Next returns the next completion for input, or input itself when nothing
// matches.
func (c *PathCompleter) Next(input string) string {
	if c.candidates == nil {
		c.candidates = completePath(input)
		c.idx = -1
	}
	if len(c.candidates) == 0 {
		c.candidates = nil
		return input
	}
	c.idx = (c.idx + 1) % len(c.candidates)
	return c.candidates[c.idx]
}

// completePath lists the entries of the directory part of input whose names
// start with the last path element, sorted, directories suffixed with "/".
// Hidden entries are only offered when the prefix starts with a dot.
func completePath(input string) []string {
	dirText, prefix := "", input
	if i := strings.LastIndex(input, "/"); i >= 0 {
		dirText, prefix = input[:i+1], input[i+1:]
	}

	dir := dirText
	if dir == "" {
		dir = "."
	}
	if dir == "~/" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		dir = filepath.Join(home, dir[2:])
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		s := dirText + name
		if isDir(filepath.Join(dir, name), e) {
			s += "/"
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func isDir(path string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
