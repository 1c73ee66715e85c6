package intent

import (
	"context"
	"regexp"
	"strings"
)

// KeywordClassifier is the deterministic fallback used when no LLM
// endpoint is configured or the endpoint fails. It covers the common
// phrasings with simple rules; anything it cannot place becomes
// OpUnknown rather than a guess.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the rule-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var (
	pathPattern    = regexp.MustCompile(`(?:between|from)\s+(\S+)\s+(?:and|to)\s+(\S+)`)
	connectPattern = regexp.MustCompile(`how\s+(?:does|is)\s+(\S+)\s+connect(?:ed)?\s+to\s+(\S+)`)
	subjectPattern = regexp.MustCompile(`(?:of|on|owns|for|if|uses?|use)\s+([a-z0-9][a-z0-9_-]*)`)
	teamPattern    = regexp.MustCompile(`(?:does\s+(?:the\s+)?)([a-z0-9-]+)\s+team`)
	dependsOnIt    = regexp.MustCompile(`what\s+(?:depends\s+on|uses)\s+([a-z0-9][a-z0-9_-]*)`)
	itDependsOn    = regexp.MustCompile(`what\s+does\s+([a-z0-9][a-z0-9_-]*)\s+(?:depend\s+on|use)`)
)

// listTargets maps plural phrasings to node types.
var listTargets = []struct {
	word     string
	nodeType string
}{
	{"services", "service"},
	{"databases", "database"},
	{"caches", "cache"},
	{"teams", "team"},
	{"deployments", "k8s_deployment"},
}

// Classify applies the keyword rules. It never returns an error; an
// unmatched question is OpUnknown.
func (c *KeywordClassifier) Classify(_ context.Context, question string, _ []Turn) (Intent, error) {
	q := strings.ToLower(strings.TrimSpace(question))
	q = strings.TrimSuffix(q, "?")

	if m := connectPattern.FindStringSubmatch(q); m != nil {
		return intentWith(OpPath, ParamFromID, cleanToken(m[1]), ParamToID, cleanToken(m[2])), nil
	}
	if strings.Contains(q, "path") || strings.Contains(q, "between") {
		if m := pathPattern.FindStringSubmatch(q); m != nil {
			return intentWith(OpPath, ParamFromID, cleanToken(m[1]), ParamToID, cleanToken(m[2])), nil
		}
	}

	if strings.Contains(q, "blast radius") || strings.Contains(q, "breaks if") ||
		strings.Contains(q, "goes down") || strings.Contains(q, "impact of") {
		if subject := findSubject(q); subject != "" {
			return intentWith(OpBlastRadius, ParamNodeID, subject), nil
		}
	}

	if strings.Contains(q, "who owns") || strings.Contains(q, "which team") ||
		strings.Contains(q, "page") {
		if subject := findSubject(q); subject != "" {
			return intentWith(OpOwner, ParamNodeID, subject), nil
		}
	}

	if m := teamPattern.FindStringSubmatch(q); m != nil && strings.Contains(q, "own") {
		return intentWith(OpTeamResources, ParamTeam, m[1]), nil
	}

	if strings.Contains(q, "list") || strings.Contains(q, "show all") || strings.Contains(q, "show me all") {
		for _, target := range listTargets {
			if strings.Contains(q, target.word) {
				return intentWith(OpListNodes, ParamNodeType, target.nodeType), nil
			}
		}
	}

	// Direction matters: "what depends on X" asks for dependents,
	// "what does X depend on" asks for dependencies.
	if m := itDependsOn.FindStringSubmatch(q); m != nil {
		return intentWith(OpDownstream, ParamNodeID, cleanToken(m[1])), nil
	}
	if m := dependsOnIt.FindStringSubmatch(q); m != nil {
		return intentWith(OpUpstream, ParamNodeID, cleanToken(m[1])), nil
	}

	return Intent{Op: OpUnknown}, nil
}

func intentWith(op Op, kv ...string) Intent {
	params := make(map[string]string, len(kv)/2)
	for i := 1; i < len(kv); i += 2 {
		params[kv[i-1]] = kv[i]
	}
	return Intent{Op: op, Params: params}
}

// findSubject pulls the resource name out of the question. Stopwords
// guard against grabbing filler after the preposition.
func findSubject(q string) string {
	matches := subjectPattern.FindAllStringSubmatch(q, -1)
	for _, m := range matches {
		token := cleanToken(m[1])
		switch token {
		case "the", "a", "an", "it", "this", "that", "down", "is":
			continue
		}
		return token
	}
	return ""
}

func cleanToken(token string) string {
	return strings.Trim(token, `"'.,!?`)
}
