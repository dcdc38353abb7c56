package category

import (
	"strings"
	"unicode"
)

// Other is the sentinel category for labels outside the known taxonomy.
const Other = "other"

// Main lists the categories the classifier is trained on.
var Main = []string{"tech", "business", "politics", "entertainment", "sport"}

var mainSet = func() map[string]bool {
	set := make(map[string]bool, len(Main))
	for _, c := range Main {
		set[c] = true
	}
	return set
}()

// aliases maps common label spellings onto the main taxonomy.
var aliases = map[string]string{
	"technology": "tech",
	"sports":     "sport",
	"finance":    "business",
	"economy":    "business",
	"politic":    "politics",
}

// Known reports whether the label is a main category.
func Known(label string) bool {
	return mainSet[strings.ToLower(strings.TrimSpace(label))]
}

// Normalize maps an arbitrary classifier label onto the main taxonomy.
// The classifier is an opaque oracle and may emit anything; unknown labels
// become Other rather than an error.
func Normalize(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if mainSet[label] {
		return label
	}
	if mapped, ok := aliases[label]; ok {
		return mapped
	}
	return Other
}

// subcategoryKeywords holds high-signal terms per subcategory of each main
// category. Detection is a plain keyword-density vote; the vocabulary is
// small by design since it only refines an already-classified article.
var subcategoryKeywords = map[string]map[string][]string{
	"tech": {
		"ai":       {"ai", "model", "llm", "neural", "training", "inference", "chatbot", "machine", "learning"},
		"gadgets":  {"phone", "smartphone", "laptop", "tablet", "headphones", "wearable", "device", "console"},
		"security": {"security", "breach", "hack", "vulnerability", "ransomware", "malware", "encryption", "exploit"},
		"startups": {"startup", "funding", "seed", "venture", "valuation", "founder", "acquisition", "ipo"},
	},
	"business": {
		"markets": {"stock", "stocks", "shares", "index", "nasdaq", "dow", "bond", "yield", "rally", "selloff"},
		"economy": {"inflation", "gdp", "recession", "unemployment", "tariff", "interest", "rates", "fed"},
		"energy":  {"oil", "gas", "opec", "crude", "renewable", "solar", "barrel", "energy"},
	},
	"politics": {
		"elections":   {"election", "vote", "ballot", "poll", "campaign", "candidate", "primary", "turnout"},
		"legislation": {"bill", "senate", "congress", "parliament", "vote", "amendment", "veto", "committee"},
		"diplomacy":   {"treaty", "sanctions", "summit", "ambassador", "diplomatic", "foreign", "alliance"},
	},
	"entertainment": {
		"film":  {"movie", "film", "director", "box", "office", "trailer", "premiere", "sequel", "studio"},
		"music": {"album", "song", "tour", "concert", "single", "band", "chart", "grammy"},
		"tv":    {"series", "season", "episode", "streaming", "netflix", "show", "finale", "renewal"},
	},
	"sport": {
		"football":   {"goal", "league", "striker", "fifa", "premier", "midfielder", "penalty", "cup"},
		"basketball": {"nba", "basketball", "playoffs", "dunk", "court", "rebounds", "points"},
		"tennis":     {"tennis", "grand", "slam", "wimbledon", "serve", "match", "set", "open"},
	},
}

// DetectSubcategory returns the best-matching subcategory for the text, or
// an empty string when no candidate reaches the density threshold.
func DetectSubcategory(mainCategory, text string, threshold float64) string {
	candidates, ok := subcategoryKeywords[Normalize(mainCategory)]
	if !ok {
		return ""
	}

	words := tokenize(text)
	if len(words) == 0 {
		return ""
	}

	best := ""
	bestScore := 0.0
	for sub, keywords := range candidates {
		score := density(words, keywords)
		if score > bestScore {
			best = sub
			bestScore = score
		}
	}

	if bestScore < threshold {
		return ""
	}
	return best
}

// density is the share of keyword hits among the first words of the text,
// scaled so short keyword-heavy headlines clear the threshold.
func density(words []string, keywords []string) float64 {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[k] = true
	}

	// Headlines carry most of the signal; cap the window so long bodies
	// do not drown a strong lede.
	window := words
	if len(window) > 80 {
		window = window[:80]
	}

	hits := 0
	for _, w := range window {
		if set[w] {
			hits++
		}
	}
	return float64(hits) * 10.0 / float64(len(window))
}

func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}
