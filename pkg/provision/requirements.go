package provision

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/modelworks/geoenv/pkg/python/pep440"
)

// A Requirement is one effective line of a pip requirements manifest:
//
//	{name}({extras})?({specifier})?(;{marker})?
type Requirement struct {
	Name      string
	Extras    []string
	Specifier pep440.Specifier

	// Marker is an unevaluated PEP 508 environment marker; evaluation is the package
	// manager's job, not ours.
	Marker string
}

var reRequirement = regexp.MustCompile(`^` +
	`(?P<name>[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)` +
	`\s*(?:\[(?P<extras>[^\]]*)\])?` +
	`\s*(?P<spec>[^;]*?)` +
	`\s*(?:;\s*(?P<marker>.*))?` +
	`$`)

// A '#' at the start of a line or preceded by any whitespace starts a comment.
var reCommentStart = regexp.MustCompile(`(^|\s)#`)

// ParseRequirements parses a pip requirements manifest down to its effective requirement lines.
// Blank lines and comments do not count; a manifest with no effective lines parses to an empty
// (nil) list, which is not an error.
func ParseRequirements(content []byte) ([]Requirement, error) {
	physical := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")

	var ret []Requirement
	for i := 0; i < len(physical); i++ {
		// Unfold backslash continuations; errors name the logical line's first physical
		// line.
		lineno := i + 1
		line := physical[i]
		for strings.HasSuffix(line, `\`) && i+1 < len(physical) {
			i++
			line = line[:len(line)-1] + physical[i]
		}
		if loc := reCommentStart.FindStringIndex(line); loc != nil {
			line = line[:loc[0]]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") {
			return nil, fmt.Errorf("requirements line %d: pip options are not supported: %q",
				lineno, line)
		}
		match := reRequirement.FindStringSubmatch(line)
		if match == nil {
			return nil, fmt.Errorf("requirements line %d: invalid requirement: %q", lineno, line)
		}
		req := Requirement{
			Name:   match[reRequirement.SubexpIndex("name")],
			Marker: match[reRequirement.SubexpIndex("marker")],
		}
		if extras := match[reRequirement.SubexpIndex("extras")]; extras != "" {
			for _, extra := range strings.Split(extras, ",") {
				if extra = strings.TrimSpace(extra); extra != "" {
					req.Extras = append(req.Extras, extra)
				}
			}
		}
		if specStr := match[reRequirement.SubexpIndex("spec")]; specStr != "" {
			spec, err := pep440.ParseSpecifier(specStr)
			if err != nil {
				return nil, fmt.Errorf("requirements line %d: %q: %w", lineno, line, err)
			}
			req.Specifier = spec
		}
		ret = append(ret, req)
	}
	return ret, nil
}
