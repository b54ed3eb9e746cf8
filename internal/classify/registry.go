// internal/classify/registry.go
package classify

import (
	"sort"
	"strings"
	"sync"

	"cinescrape/internal/utils"
)

// CategoryRegistry holds the strength and weakness category vocabularies
// used to constrain review analysis. The registry grows when the model
// suggests a new category; category titles returned by the model that
// are not (or do not become) registered are filtered out.
type CategoryRegistry struct {
	mu         sync.Mutex
	strengths  map[string]string
	weaknesses map[string]string
	log        utils.Logger
}

// NewRegistry creates a registry seeded with the default film-review
// vocabularies.
func NewRegistry() *CategoryRegistry {
	return &CategoryRegistry{
		strengths: map[string]string{
			"Acting/Performances":   "Praise for actors' performances",
			"Story/Screenplay":      "Quality of narrative, plot, dialogue",
			"Direction":             "Filmmaking skill, vision",
			"Cinematography":        "Visual style, camera work",
			"Production Design":     "Sets, costumes, visual world-building",
			"Music/Soundtrack":      "Score, sound design",
			"Emotional Impact":      "Ability to evoke emotions",
			"Originality":           "Freshness, creativity",
			"Pacing":                "Narrative flow, rhythm",
			"Cultural Significance": "Representation, social relevance",
		},
		weaknesses: map[string]string{
			"Weak Acting":           "Poor performances",
			"Plot Issues":           "Holes, inconsistencies",
			"Poor Direction":        "Lack of vision, execution",
			"Technical Flaws":       "Editing, sound issues",
			"Pacing Problems":       "Too slow/fast",
			"Predictability":        "Lack of surprises",
			"Character Development": "Underdeveloped characters",
			"Tonal Issues":          "Inconsistent mood",
			"Excessive Length":      "Overly long runtime",
			"Cultural Missteps":     "Offensive or insensitive elements",
		},
		log: utils.NewComponentLogger("categories"),
	}
}

// SuggestedCategory is a new category proposed by the model.
type SuggestedCategory struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Promote registers a suggested category under the side it was actually
// used on. A title used only among strengths becomes a strength, only
// among weaknesses a weakness; ambiguous or unused titles default to
// strength. Already-registered titles are left untouched.
func (r *CategoryRegistry) Promote(cat SuggestedCategory, strengths, weaknesses []string) {
	if strings.TrimSpace(cat.Title) == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.strengths[cat.Title]; ok {
		return
	}
	if _, ok := r.weaknesses[cat.Title]; ok {
		return
	}

	isStrength := contains(strengths, cat.Title)
	isWeakness := contains(weaknesses, cat.Title)

	if isWeakness && !isStrength {
		r.weaknesses[cat.Title] = cat.Description
		r.log.Infof("new weakness category: %s", cat.Title)
		return
	}
	r.strengths[cat.Title] = cat.Description
	r.log.Infof("new strength category: %s", cat.Title)
}

// FilterStrengths drops titles that are not registered strengths.
func (r *CategoryRegistry) FilterStrengths(titles []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterKnown(titles, r.strengths)
}

// FilterWeaknesses drops titles that are not registered weaknesses.
func (r *CategoryRegistry) FilterWeaknesses(titles []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return filterKnown(titles, r.weaknesses)
}

// StrengthLines renders the strength vocabulary as sorted "title:
// description" lines for prompt embedding.
func (r *CategoryRegistry) StrengthLines() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return renderLines(r.strengths)
}

// WeaknessLines renders the weakness vocabulary as sorted "title:
// description" lines for prompt embedding.
func (r *CategoryRegistry) WeaknessLines() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return renderLines(r.weaknesses)
}

func filterKnown(titles []string, known map[string]string) []string {
	var out []string
	for _, t := range titles {
		if _, ok := known[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func renderLines(m map[string]string) string {
	titles := make([]string, 0, len(m))
	for t := range m {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	var b strings.Builder
	for _, t := range titles {
		b.WriteString(t)
		b.WriteString(": ")
		b.WriteString(m[t])
		b.WriteString("\n")
	}
	return b.String()
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
