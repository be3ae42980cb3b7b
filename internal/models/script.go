package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Script is the file name of one verification input, relative to the work dir.
type Script string

// String returns the script name.
func (s Script) String() string {
	return string(s)
}

// Path resolves the script inside dir.
func (s Script) Path(dir string) string {
	return filepath.Join(dir, string(s))
}

// Validate checks that the name is a plain file name inside the work dir.
func (s Script) Validate() error {
	name := strings.TrimSpace(string(s))
	if name == "" {
		return fmt.Errorf("script name is required")
	}
	if name != string(s) {
		return fmt.Errorf("script name %q has surrounding whitespace", string(s))
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("script %q must be relative to the work dir", name)
	}
	if filepath.Clean(name) != name {
		return fmt.Errorf("script %q must be a clean relative path (use %q)", name, filepath.Clean(name))
	}
	if name == ".." || strings.HasPrefix(name, "../") {
		return fmt.Errorf("script %q must not leave the work dir", name)
	}
	return nil
}

// ScriptsFromStrings converts plain names into scripts, preserving order.
func ScriptsFromStrings(names []string) []Script {
	scripts := make([]Script, 0, len(names))
	for _, n := range names {
		scripts = append(scripts, Script(n))
	}
	return scripts
}
