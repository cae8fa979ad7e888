package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/alexhholmes/structlayout/internal/diag"
)

// TypeAnnotation holds parsed @layout annotation
type TypeAnnotation struct {
	Size   int      // Buffer size in bytes (0 if missing, rejected by the analyzer)
	Align  int      // Alignment in bytes (0 if missing, rejected by the analyzer)
	Check  string   // Capability interface name (empty = plain-old-data only)
	Derive []string // Requested derives, checked against the whitelist by codegen
}

var (
	annotationRe = regexp.MustCompile(`^@layout(?:\s+(.*))?$`)
	pairRe       = regexp.MustCompile(`^(\w+)=(\S+)$`)
)

// ParseAnnotation parses @layout annotation from comment text
//
// Expected format:
//
//	// @layout size=16 align=4
//	// @layout size=16 align=4 check=Pod
//	// @layout size=64 align=8 derive=copy,clone,debug,default
//
// Params are space-separated key=value pairs. Sizes and alignments are not
// range-checked here; that is the analyzer's job.
func ParseAnnotation(comment string) (*TypeAnnotation, error) {
	matches := annotationRe.FindStringSubmatch(strings.TrimSpace(comment))
	if matches == nil {
		return nil, errNoAnnotation
	}

	return parseLayoutParams(matches[1])
}

var errNoAnnotation = errors.New("no @layout annotation found")

func parseLayoutParams(params string) (*TypeAnnotation, error) {
	anno := &TypeAnnotation{}
	seen := make(map[string]bool)

	for _, word := range strings.Fields(params) {
		pair := pairRe.FindStringSubmatch(word)
		if pair == nil {
			return nil, diag.New(diag.UnsupportedAttribute, "", "",
				"malformed parameter %q, expecting key=value", word)
		}
		key, value := pair[1], pair[2]

		if seen[key] {
			return nil, diag.New(diag.UnsupportedAttribute, "", "", "duplicate parameter: %s", key)
		}
		seen[key] = true

		switch key {
		case "size":
			size, err := strconv.Atoi(value)
			if err != nil {
				return nil, diag.New(diag.UnsupportedAttribute, "", "", "invalid size: %s", value)
			}
			anno.Size = size

		case "align":
			align, err := strconv.Atoi(value)
			if err != nil {
				return nil, diag.New(diag.UnsupportedAttribute, "", "", "invalid align value: %s", value)
			}
			anno.Align = align

		case "check":
			anno.Check = value

		case "derive":
			for _, d := range strings.Split(value, ",") {
				if d == "" {
					return nil, diag.New(diag.UnsupportedAttribute, "", "",
						"derive expects a comma separated list, got %q", value)
				}
				anno.Derive = append(anno.Derive, d)
			}

		default:
			return nil, diag.New(diag.UnsupportedAttribute, "", "", "unknown parameter: %s", key)
		}
	}

	return anno, nil
}

// FindAnnotation searches comment lines for @layout annotation.
// A line that starts with @layout but does not parse is reported as an error
// rather than skipped.
func FindAnnotation(comments []string) (*TypeAnnotation, bool, error) {
	for _, comment := range comments {
		anno, err := ParseAnnotation(comment)
		if errors.Is(err, errNoAnnotation) {
			continue
		}
		if err != nil {
			return nil, true, err
		}
		return anno, true, nil
	}
	return nil, false, nil
}

// CleanComment removes comment markers from a line
// "// @layout size=4096" → "@layout size=4096"
// "/* @layout size=4096 */" → "@layout size=4096"
func CleanComment(line string) string {
	line = strings.TrimSpace(line)

	// Remove // prefix
	if strings.HasPrefix(line, "//") {
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimSpace(line)
		return line
	}

	// Remove /* */ wrapper
	if strings.HasPrefix(line, "/*") && strings.HasSuffix(line, "*/") {
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(line)
		return line
	}

	return line
}
