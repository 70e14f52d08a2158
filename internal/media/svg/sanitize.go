package svg

import (
	"bytes"
	"errors"
	"regexp"
)

var ErrNotSVG = errors.New("not an svg document")

type rule struct {
	name    string
	pattern *regexp.Regexp
}

// Avatars are rendered inline, so anything that can run script, pull a remote
// resource or expand entities is removed. Order matters: whole elements go
// before the attribute rules.
var rules = []rule{
	{"doctype", regexp.MustCompile(`(?is)<!DOCTYPE[^\[>]*(\[.*?\])?\s*>`)},
	{"entity", regexp.MustCompile(`(?is)<!ENTITY[^>]*>`)},
	{"script", regexp.MustCompile(`(?is)<\s*script[\s>].*?<\s*/\s*script\s*>`)},
	{"foreign-object", regexp.MustCompile(`(?is)<\s*foreignObject[\s>].*?<\s*/\s*foreignObject\s*>`)},
	{"event-handler", regexp.MustCompile(`(?is)\son[a-z]+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)},
	{"script-link", regexp.MustCompile(`(?is)\s(xlink:)?href\s*=\s*("\s*javascript:[^"]*"|'\s*javascript:[^']*')`)},
	{"remote-link", regexp.MustCompile(`(?is)\s(xlink:)?href\s*=\s*("\s*(https?:)?//[^"]*"|'\s*(https?:)?//[^']*')`)},
}

// Sanitize returns the avatar with every rule applied.
func Sanitize(input []byte) ([]byte, error) {
	clean, _, err := SanitizeReport(input)
	return clean, err
}

// SanitizeReport is Sanitize that also names the rules that removed something.
func SanitizeReport(input []byte) ([]byte, []string, error) {
	if !bytes.Contains(bytes.ToLower(input), []byte("<svg")) {
		return nil, nil, ErrNotSVG
	}

	var fired []string
	clean := input
	for _, r := range rules {
		if !r.pattern.Match(clean) {
			continue
		}
		fired = append(fired, r.name)
		clean = r.pattern.ReplaceAll(clean, nil)
	}
	return clean, fired, nil
}
