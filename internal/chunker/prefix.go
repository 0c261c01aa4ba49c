package chunker

import "regexp"

// Service-prefix patterns, tried in order; first match wins. These follow the
// conventions of multi-service log aggregators: "api | ...", "[api] ...",
// "api: ...".
var (
	pipePrefix    = regexp.MustCompile(`^([A-Za-z0-9._-]{1,32}) \| `)
	bracketPrefix = regexp.MustCompile(`^\[([A-Za-z0-9._-]{1,32})\]`)
	colonPrefix   = regexp.MustCompile(`^([A-Za-z0-9._-]{1,32}): `)
)

// ExtractServicePrefix pulls the service token from a structured line.
// Returns "" when the line carries no recognizable prefix.
func ExtractServicePrefix(line string) string {
	for _, re := range []*regexp.Regexp{pipePrefix, bracketPrefix, colonPrefix} {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}
