package exercise

import (
	"regexp"
	"strings"
)

// synonyms maps common PT terms to the muscle names the catalog uses.
var synonyms = map[string][]string{
	"trapezius":       {"traps"},
	"trap":            {"traps"},
	"traps":           {"traps"},
	"upper trap":      {"traps", "neck"},
	"upper trapezius": {"traps", "neck"},
	"lat":             {"lats"},
	"latissimus":      {"lats"},
	"pec":             {"chest"},
	"pecs":            {"chest"},
	"pectoral":        {"chest"},
	"quad":            {"quadriceps"},
	"quads":           {"quadriceps"},
	"hammy":           {"hamstrings"},
	"hammies":         {"hamstrings"},
	"ham":             {"hamstrings"},
	"glute":           {"glutes"},
	"gluteal":         {"glutes"},
	"ab":              {"abdominals"},
	"abs":             {"abdominals"},
	"core":            {"abdominals", "lower back"},
	"calf":            {"calves"},
	"forearm":         {"forearms"},
	"bicep":           {"biceps"},
	"tricep":          {"triceps"},
	"delt":            {"shoulders"},
	"delts":           {"shoulders"},
	"deltoid":         {"shoulders"},
	"rotator cuff":    {"shoulders"},
	"rhomboid":        {"middle back"},
	"mid back":        {"middle back"},
	"upper back":      {"middle back", "traps"},
	"lower back":      {"lower back"},
	"lumbar":          {"lower back"},
	"cervical":        {"neck"},
	"hip flexor":      {"quadriceps"},
	"groin":           {"adductors"},
	"inner thigh":     {"adductors"},
	"outer thigh":     {"abductors"},
	"it band":         {"abductors"},
	"wrist":           {"forearms"},
}

// genericWords are too generic to drive a match on their own.
var genericWords = map[string]struct{}{
	"stretch": {}, "stretching": {}, "exercise": {}, "upper": {}, "lower": {},
	"side": {}, "front": {}, "back": {}, "the": {}, "a": {}, "and": {}, "on": {},
	"to": {}, "with": {}, "for": {}, "of": {}, "left": {}, "right": {},
	"seated": {}, "standing": {},
}

// queryOverrides pins well-known PT phrasings to the catalog entry a
// clinician would expect. Checked in order; first substring hit wins.
var queryOverrides = []struct {
	phrase string
	name   string
}{
	{"upper trapezius stretch", "Side Neck Stretch"},
	{"upper trap stretch", "Side Neck Stretch"},
	{"trap stretch", "Side Neck Stretch"},
	{"trapezius stretch", "Side Neck Stretch"},
	{"neck lateral flexion", "Side Neck Stretch"},
	{"neck rotation stretch", "Neck-SMR"},
	{"upper back stretch", "Upper Back Stretch"},
	{"lower back stretch", "Chair Lower Back Stretch"},
	{"shoulder cross body stretch", "Shoulder Stretch"},
	{"chest opener stretch", "Behind Head Chest Stretch"},
	{"cat cow", "Cat Stretch"},
}

var wordRe = regexp.MustCompile(`[a-z]+`)

// tokenize splits text into lowercase alpha tokens.
func tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// expandSynonyms returns the catalog muscle names a query might refer to.
func expandSynonyms(query string) map[string]struct{} {
	muscles := make(map[string]struct{})
	q := strings.ToLower(query)
	for phrase, targets := range synonyms {
		if strings.Contains(q, phrase) {
			for _, t := range targets {
				muscles[t] = struct{}{}
			}
		}
	}
	return muscles
}

// overrideMatch returns the curated catalog entry for a query, or nil.
func overrideMatch(query string, byName map[string]*Entry) *Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, o := range queryOverrides {
		if strings.Contains(q, o.phrase) {
			return byName[strings.ToLower(o.name)]
		}
	}
	return nil
}

// score rates an exercise against a query; higher is better, zero means no
// match. An exact name match beats a substring match beats token overlap;
// muscle-group hits add on top; stretch queries prefer the stretching
// category; a score earned only through generic words or naming muscles the
// exercise does not touch is demoted.
func score(query string, e *Entry) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	name := strings.ToLower(e.Name)

	nameTokens := make(map[string]struct{})
	for _, t := range tokenize(name) {
		nameTokens[t] = struct{}{}
	}
	primary := make(map[string]struct{}, len(e.PrimaryMuscles))
	for _, m := range e.PrimaryMuscles {
		primary[strings.ToLower(m)] = struct{}{}
	}
	secondary := make(map[string]struct{}, len(e.SecondaryMuscles))
	for _, m := range e.SecondaryMuscles {
		secondary[strings.ToLower(m)] = struct{}{}
	}
	category := strings.ToLower(e.Category)

	var meaningful, generic []string
	for _, t := range tokenize(q) {
		if _, ok := genericWords[t]; ok {
			generic = append(generic, t)
		} else {
			meaningful = append(meaningful, t)
		}
	}
	meaningfulInName := 0
	for _, t := range meaningful {
		if _, ok := nameTokens[t]; ok {
			meaningfulInName++
		}
	}

	s := 0.0

	switch {
	case q == name:
		s += 100
	case strings.Contains(name, q):
		s += 80
	default:
		genericHits := 0
		for _, t := range generic {
			if _, ok := nameTokens[t]; ok {
				genericHits++
			}
		}
		if len(meaningful) > 0 && meaningfulInName > 0 {
			s += float64(meaningfulInName) / float64(len(meaningful)) * 60
			s += float64(genericHits) * 2
		} else if genericHits > 0 {
			s += float64(genericHits) * 3
		}
	}

	target := expandSynonyms(q)
	muscleHits := 0
	for m := range target {
		hit := false
		if contains(primary, m) {
			s += 40
			hit = true
		}
		if contains(secondary, m) {
			s += 15
			hit = true
		}
		if hit {
			muscleHits++
		}
	}

	wantsStretch := strings.Contains(q, "stretch") || strings.Contains(q, "flexibility")
	if wantsStretch {
		if category == "stretching" {
			s += 25
		} else {
			s -= 10
		}
	}

	if s > 0 && len(meaningful) > 0 && meaningfulInName == 0 && muscleHits == 0 {
		s *= 0.1
	}
	if s > 0 && len(target) > 0 && muscleHits == 0 {
		s *= 0.2
	}

	return s
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
