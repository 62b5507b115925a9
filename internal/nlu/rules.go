// Package nlu turns user text into intents with hand written rules.
package nlu

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/Harshitk-cp/recipebot/internal/domain"
)

var (
	reSpace = regexp.MustCompile(`\s+`)
	reTrim  = regexp.MustCompile(`[?!.,;]+$`)

	reBye      = regexp.MustCompile(`\b(bye|goodbye|see you|that's all|that is all)\b`)
	reHello    = regexp.MustCompile(`^(hi|hello|hey|good (morning|evening|afternoon))\b`)
	reThanks   = regexp.MustCompile(`\b(thanks|thank you|cheers)\b`)
	reRandom   = regexp.MustCompile(`\b(random|surprise me)\b`)
	reRestart  = regexp.MustCompile(`\b(start over|start again|from scratch|reset)\b`)
	reSaveFav  = regexp.MustCompile(`\b(save|add|mark)\b.*\bfavou?rites?\b`)
	reDropFav  = regexp.MustCompile(`\b(remove|delete|unmark)\b.*\bfavou?rites?\b`)
	reListFav  = regexp.MustCompile(`\b(list|show|what are|tell me)\b.*\bfavou?rites?\b|^favou?rites$`)
	reOther    = regexp.MustCompile(`\b(something else|another one|other options|alternatives)\b`)
	rePickOne  = regexp.MustCompile(`\b(the )?(first|1st)( one)?\b`)
	rePickTwo  = regexp.MustCompile(`\b(the )?(second|2nd)( one)?\b`)
	rePickLast = regexp.MustCompile(`\b(the )?last( one)?\b`)
	reAffirm   = regexp.MustCompile(`^(yes|yeah|yep|sure|ok|okay|please do|sounds good)\b`)
	reDeny     = regexp.MustCompile(`^(no|nope|nah|not really)\b`)

	reName      = regexp.MustCompile(`\b(?:recipe for|called|named) (.+)$`)
	reWithout   = regexp.MustCompile(`\b(?:without|no) ([a-z]+)`)
	reWith      = regexp.MustCompile(`\bwith ([a-z ,]+?)(?: and no .*| without .*| in .*| within .*| under .*| less than .*| from .*| rated .*| that .*|$)`)
	reEase      = regexp.MustCompile(`\b(not too hard|not too difficult|easy|simple|super simple|fairly easy|average|difficult|hard)\b`)
	rePrepTime  = regexp.MustCompile(`\b(?:under|less than|within|in) (\d+) min(?:ute)?s?\b`)
	reRating    = regexp.MustCompile(`\brat(?:ed|ing)(?: of)?(?: at least)? (\d+(?:\.\d+)?)`)
	reCookbook  = regexp.MustCompile(`\bfrom (?:the )?(.+?) (?:cook)?book\b`)
	reSplitList = regexp.MustCompile(`\s*(?:,|\band\b)\s*`)
)

var requestRules = []struct {
	re   *regexp.Regexp
	slot string
}{
	{regexp.MustCompile(`\bhow long\b|\bprep(aration)? time\b`), domain.SlotPrepTime},
	{regexp.MustCompile(`\b(which|what) (cook)?book\b`), domain.SlotCookbook},
	{regexp.MustCompile(`\b(which|what) page\b`), domain.SlotPage},
	{regexp.MustCompile(`\bwhat do i need\b|\bwhat ingredients\b|\bingredients\?`), domain.SlotIngredients},
	{regexp.MustCompile(`\bhow (good|is it rated)\b|\bwhat rating\b|\bits rating\b`), domain.SlotRating},
	{regexp.MustCompile(`\bnotes\b`), domain.SlotNotes},
	{regexp.MustCompile(`\b(link|url|website)\b`), domain.SlotLink},
	{regexp.MustCompile(`\bhow (hard|difficult|easy) is\b`), domain.SlotEase},
	{regexp.MustCompile(`\bwhen did i (last )?make\b`), domain.SlotLastMade},
	{regexp.MustCompile(`\bslow ?cooker\b`), domain.SlotSlowcooker},
	{regexp.MustCompile(`\bwhat (type|kind) of (dish|meal)\b`), domain.SlotType},
}

var stopWords = map[string]bool{"a": true, "an": true, "the": true, "some": true, "fresh": true}

// Rules is a keyword NLU over the recipe domain. Ingredients outside the
// vocabulary become the unknown ingredient marker.
type Rules struct {
	mu         sync.RWMutex
	vocabulary []string
}

func NewRules(vocabulary []string) *Rules {
	r := &Rules{}
	r.SetVocabulary(vocabulary)
	return r
}

// SetVocabulary replaces the known ingredient words.
func (r *Rules) SetVocabulary(vocabulary []string) {
	words := make([]string, 0, len(vocabulary))
	for _, w := range vocabulary {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	r.mu.Lock()
	r.vocabulary = words
	r.mu.Unlock()
}

// Knows reports whether any vocabulary word contains the ingredient.
func (r *Rules) Knows(ingredient string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.vocabulary {
		if strings.Contains(w, ingredient) {
			return true
		}
	}
	return false
}

func (r *Rules) Understand(ctx context.Context, text string) ([]domain.Intent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := normalize(text)
	if s == "" {
		return nil, nil
	}

	single := func(kind domain.IntentKind) []domain.Intent {
		return []domain.Intent{{Kind: kind, Confidence: 1}}
	}

	switch {
	case reBye.MatchString(s):
		return single(domain.IntentBye), nil
	case reRestart.MatchString(s):
		return single(domain.IntentStartOver), nil
	case reDropFav.MatchString(s):
		return single(domain.IntentRemoveFromFavorites), nil
	case reSaveFav.MatchString(s):
		return single(domain.IntentSaveAsFavorite), nil
	case reListFav.MatchString(s):
		return single(domain.IntentListFavorites), nil
	case reThanks.MatchString(s):
		return single(domain.IntentThanks), nil
	case reRandom.MatchString(s):
		return single(domain.IntentRequestRandom), nil
	case reOther.MatchString(s):
		return single(domain.IntentRequestAlternatives), nil
	case reAffirm.MatchString(s):
		return single(domain.IntentAffirm), nil
	case reDeny.MatchString(s) && !reWithout.MatchString(s):
		return single(domain.IntentDeny), nil
	}

	var intents []domain.Intent
	for _, rule := range requestRules {
		if rule.re.MatchString(s) {
			intents = append(intents, domain.Intent{Kind: domain.IntentRequest, Slot: rule.slot, Confidence: 1})
		}
	}
	if len(intents) > 0 {
		return intents, nil
	}

	switch {
	case rePickOne.MatchString(s) && len(s) < 24:
		return single(domain.IntentPickFirst), nil
	case rePickTwo.MatchString(s) && len(s) < 24:
		return single(domain.IntentPickSecond), nil
	case rePickLast.MatchString(s) && len(s) < 24:
		return single(domain.IntentPickLast), nil
	}

	intents = r.informs(s)
	if len(intents) == 0 && reHello.MatchString(s) {
		return single(domain.IntentHello), nil
	}
	return intents, nil
}

func (r *Rules) informs(s string) []domain.Intent {
	var intents []domain.Intent
	inform := func(slot, value string) {
		intents = append(intents, domain.Intent{Kind: domain.IntentInform, Slot: slot, Value: value, Confidence: 1})
	}

	if m := reName.FindStringSubmatch(s); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "" && !strings.HasPrefix(name, "something") && !strings.HasPrefix(name, "anything") {
			inform(domain.SlotName, name)
			return intents
		}
	}

	if m := reWith.FindStringSubmatch(s); m != nil {
		for _, raw := range reSplitList.Split(m[1], -1) {
			ing := stripStopWords(raw)
			if ing == "" {
				continue
			}
			if r.Knows(ing) {
				inform(domain.SlotIngredients, ing)
			} else {
				inform(domain.SlotIngredients, domain.UnknownIngredient)
			}
		}
	}
	for _, m := range reWithout.FindAllStringSubmatch(s, -1) {
		intents = append(intents, domain.Intent{Kind: domain.IntentNegativeInform, Slot: domain.SlotIngredients, Value: m[1], Confidence: 1})
	}
	if m := reEase.FindStringSubmatch(s); m != nil {
		inform(domain.SlotEase, m[1])
	}
	if m := rePrepTime.FindStringSubmatch(s); m != nil {
		inform(domain.SlotPrepTime, m[1])
	}
	if m := reRating.FindStringSubmatch(s); m != nil {
		inform(domain.SlotRating, m[1])
	}
	if m := reCookbook.FindStringSubmatch(s); m != nil {
		inform(domain.SlotCookbook, strings.TrimSpace(m[1]))
	}
	return intents
}

func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = reSpace.ReplaceAllString(s, " ")
	return reTrim.ReplaceAllString(s, "")
}

func stripStopWords(s string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if !stopWords[f] {
			out = append(out, f)
		}
	}
	return strings.Join(out, " ")
}
