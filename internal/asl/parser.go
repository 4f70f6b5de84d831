// Package asl parses ASL (Aethero Syntax Language) tags embedded in
// free-form input text. Tags have the form [NAME:value]; the four
// recognized names carry intent, action, expected output, and logging
// hook information for the ministerial pipeline.
package asl

import (
	"fmt"
	"regexp"
	"strings"
)

// TagType identifies a recognized ASL tag.
type TagType string

const (
	TagIntent TagType = "INTENT"
	TagAction TagType = "ACTION"
	TagOutput TagType = "OUTPUT"
	TagHook   TagType = "HOOK"
)

// recognizedTags is the closed set of tag names the parser accepts.
var recognizedTags = map[TagType]bool{
	TagIntent: true,
	TagAction: true,
	TagOutput: true,
	TagHook:   true,
}

// Minister identifies one of the four cabinet routing targets.
type Minister string

const (
	MinisterPrimus    Minister = "primus"
	MinisterLucius    Minister = "lucius"
	MinisterArchivus  Minister = "archivus"
	MinisterFrontinus Minister = "frontinus"
)

// Ministers lists the four routing targets in pipeline order.
var Ministers = []Minister{MinisterPrimus, MinisterLucius, MinisterArchivus, MinisterFrontinus}

// IsMinister reports whether name is one of the four fixed minister names.
func IsMinister(name string) bool {
	switch Minister(name) {
	case MinisterPrimus, MinisterLucius, MinisterArchivus, MinisterFrontinus:
		return true
	}
	return false
}

// ParseResult is the outcome of one parse call.
type ParseResult struct {
	Tags             map[TagType]string `json:"tags"`
	Raw              string             `json:"raw_content"`
	IsValid          bool               `json:"is_valid"`
	ValidationErrors []string           `json:"validation_errors"`
	Routing          Minister           `json:"ministerial_routing"`
}

var tagPattern = regexp.MustCompile(`\[(\w+):([^\]]+)\]`)

// routingKeywords maps action keywords to ministers. Groups are checked
// in order; the first group with a matching keyword wins.
var routingKeywords = []struct {
	minister Minister
	keywords []string
}{
	{MinisterLucius, []string{"execute", "build", "deploy", "run"}},
	{MinisterArchivus, []string{"remember", "store", "log", "audit"}},
	{MinisterFrontinus, []string{"display", "show", "visualize", "interface"}},
}

// Parse extracts ASL tags from input text. Unknown tag names are recorded
// as validation errors but do not abort parsing. The result is valid when
// at least one recognized tag was found and no validation errors occurred.
func Parse(input string) ParseResult {
	tags := make(map[TagType]string)
	var errs []string

	for _, m := range tagPattern.FindAllStringSubmatch(input, -1) {
		name := TagType(strings.ToUpper(m[1]))
		if !recognizedTags[name] {
			errs = append(errs, fmt.Sprintf("unknown ASL tag: %s", m[1]))
			continue
		}
		tags[name] = strings.TrimSpace(m[2])
	}

	if len(tags) == 0 {
		errs = append(errs, "no valid ASL tags found")
	}

	return ParseResult{
		Tags:             tags,
		Raw:              input,
		IsValid:          len(errs) == 0,
		ValidationErrors: errs,
		Routing:          routeFor(tags),
	}
}

// routeFor picks the minister that should handle the request based on the
// ACTION tag value. Requests without an action, or whose action matches no
// keyword group, default to primus.
func routeFor(tags map[TagType]string) Minister {
	action, ok := tags[TagAction]
	if !ok {
		return MinisterPrimus
	}
	action = strings.ToLower(action)

	for _, group := range routingKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(action, kw) {
				return group.minister
			}
		}
	}
	return MinisterPrimus
}

// ValidateSyntax checks ASL syntax compliance without building a full
// ParseResult: balanced brackets, at least one tag, and recognized names.
func ValidateSyntax(content string) (bool, []string) {
	var errs []string

	if strings.Count(content, "[") != strings.Count(content, "]") {
		errs = append(errs, "unbalanced ASL tag brackets")
	}

	matches := tagPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		errs = append(errs, "no valid ASL tags found")
	}
	for _, m := range matches {
		if !recognizedTags[TagType(strings.ToUpper(m[1]))] {
			errs = append(errs, fmt.Sprintf("unrecognized ASL tag: %s", m[1]))
		}
	}

	return len(errs) == 0, errs
}
