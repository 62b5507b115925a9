package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Harshitk-cp/recipebot/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversation struct {
	t      *testing.T
	f      *fixture
	tenant uuid.UUID
	id     uuid.UUID
}

func startConversation(t *testing.T, f *fixture) (*conversation, *TurnResult) {
	t.Helper()
	tenant := uuid.New()
	res, err := f.dialog.StartSession(context.Background(), tenant)
	require.NoError(t, err)
	return &conversation{t: t, f: f, tenant: tenant, id: res.SessionID}, res
}

func (c *conversation) say(intents ...domain.Intent) *TurnResult {
	c.t.Helper()
	res, err := c.f.dialog.Turn(context.Background(), c.tenant, c.id, intents)
	require.NoError(c.t, err)
	return res
}

func (c *conversation) session() *domain.Session {
	c.t.Helper()
	sess, err := c.f.sessions.Get(context.Background(), c.id, c.tenant)
	require.NoError(c.t, err)
	return sess
}

func TestStartSessionWelcomes(t *testing.T) {
	f := newFixture(t, soups()...)
	c, res := startConversation(t, f)

	assert.Equal(t, domain.ActionWelcome, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
	assert.NotEmpty(t, res.Utterance)

	sess := c.session()
	assert.False(t, sess.Belief.FirstTurn)
	assert.Equal(t, 1, sess.TurnCount)
	assert.Equal(t, 1, sess.History.Len())
}

func TestEmptyTurnAfterStartIsBad(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say()
	assert.Equal(t, domain.ActionBad, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
}

func TestGreetingsAndThanks(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	assert.Equal(t, domain.ActionWelcome, c.say(intent(domain.IntentHello)).Action.Kind)
	assert.Equal(t, domain.ActionRequestMore, c.say(intent(domain.IntentThanks)).Action.Kind)
}

func TestFoundTooMany(t *testing.T) {
	f := newFixture(t, mangoes(6)...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, "mango"))
	assert.Equal(t, domain.ActionFoundTooMany, res.Action.Kind)
	assert.Equal(t, domain.StateListedFound, res.State)
	assert.Equal(t, 6, res.MatchCount)
	assert.Equal(t, "6", res.Action.Slots[domain.PayloadCount])
	assert.NotContains(t, res.Action.Slots, domain.PayloadMessage)

	res = c.say(inform(domain.SlotIngredients, "sugar"))
	assert.Equal(t, domain.ActionFoundTooMany, res.Action.Kind)
	assert.Contains(t, res.Utterance, "still leaves")
}

func TestFoundSomeTwoNames(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, "leek"))
	assert.Equal(t, domain.ActionFoundSome, res.Action.Kind)
	assert.Equal(t, "Soup A or Soup B", res.Action.Slots[domain.PayloadNames])
	assert.Equal(t, domain.StateListedFound, res.State)
}

func TestPickFirstSelects(t *testing.T) {
	f := newFixture(t, append(soups(), domain.Recipe{Name: "Leek Pie", Ingredients: "leek, pastry"})...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, "leek"))
	require.Equal(t, 3, res.MatchCount)
	assert.Equal(t, "Leek Pie, Soup A or Soup B", res.Action.Slots[domain.PayloadNames])

	res = c.say(intent(domain.IntentPickFirst))
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, "Leek Pie", res.Action.Slots[domain.PayloadName])
	assert.Equal(t, domain.StateChosen, res.State)
	assert.Equal(t, "Leek Pie", c.session().Belief.Chosen.Name)
}

func TestPickWithoutListIsBad(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(intent(domain.IntentPickSecond))
	assert.Equal(t, domain.ActionBad, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
}

func TestSingleMatchPhrasing(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, "potato"))
	assert.Equal(t, domain.ActionNarrowedDownToOne, res.Action.Kind)
	assert.Equal(t, domain.StateListedFound, res.State)

	res = c.say(intent(domain.IntentAffirm))
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, domain.StateChosen, res.State)

	res = c.say(inform(domain.SlotIngredients, "lime"))
	assert.Equal(t, domain.ActionFoundOne, res.Action.Kind)
	assert.Equal(t, "Mango Salad", res.Action.Slots[domain.PayloadName])
}

func TestNameInformSelects(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotName, "Chicken Rice"))
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, domain.StateChosen, res.State)
}

func TestUnknownIngredientAction(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, domain.UnknownIngredient))
	assert.Equal(t, domain.ActionUnknownIngredient, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
}

func TestNotFoundAfterTooMany(t *testing.T) {
	f := newFixture(t, mangoes(6)...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "mango"))

	res := c.say(inform(domain.SlotName, "Pizza"))
	assert.Equal(t, domain.ActionNotFound, res.Action.Kind)
	assert.Equal(t, "Sorry, that would narrow it down to 0 results.", res.Utterance)
	assert.Equal(t, domain.StateListedFound, res.State)
}

func TestPartialSearchAccepted(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, "mango"), inform(domain.SlotIngredients, "chicken"))
	assert.Equal(t, domain.ActionAskForPartialSearch, res.Action.Kind)
	assert.Equal(t, domain.StateAskedForPartial, res.State)

	res = c.say(intent(domain.IntentAffirm))
	assert.Equal(t, domain.ActionFoundSome, res.Action.Kind)
	assert.Equal(t, "Chicken Rice or Mango Salad", res.Action.Slots[domain.PayloadNames])
	assert.Equal(t, domain.StateListedFound, res.State)
}

func TestPickFromPartialListing(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "mango"), inform(domain.SlotIngredients, "chicken"))

	res := c.say(intent(domain.IntentAffirm))
	require.Equal(t, domain.ActionFoundSome, res.Action.Kind)
	assert.Equal(t, 2, res.MatchCount)
	assert.Equal(t, domain.ModePartial, c.session().Belief.ListingMode)

	res = c.say(intent(domain.IntentPickFirst))
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, "Chicken Rice", res.Action.Slots[domain.PayloadName])
	assert.Equal(t, domain.StateChosen, res.State)
	assert.Equal(t, "Chicken Rice", c.session().Belief.Chosen.Name)
}

func TestAffirmSinglePartialMatch(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "mango"), inform(domain.SlotIngredients, "truffle"))

	res := c.say(intent(domain.IntentAffirm))
	require.Equal(t, domain.ActionNarrowedDownToOne, res.Action.Kind)
	assert.Equal(t, "Mango Salad", res.Action.Slots[domain.PayloadName])

	res = c.say(intent(domain.IntentAffirm))
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, "Mango Salad", res.Action.Slots[domain.PayloadName])
	assert.Equal(t, domain.StateChosen, res.State)
}

func TestPartialListingTooManyToPick(t *testing.T) {
	f := newFixture(t, mangoes(6)...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "mango"), inform(domain.SlotIngredients, "truffle"))

	res := c.say(intent(domain.IntentAffirm))
	assert.Equal(t, domain.ActionFoundTooMany, res.Action.Kind)
	assert.Equal(t, "6", res.Action.Slots[domain.PayloadCount])
	assert.Equal(t, "I found 6 recipes. Can you tell me more about what you want?", res.Utterance)

	res = c.say(intent(domain.IntentPickFirst))
	assert.Equal(t, domain.ActionBad, res.Action.Kind)
}

func TestInformAfterPartialListingSearchesExactly(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "mango"), inform(domain.SlotIngredients, "chicken"))
	c.say(intent(domain.IntentAffirm))

	res := c.say(inform(domain.SlotIngredients, "lime"))
	assert.Equal(t, domain.ActionAskForPartialSearch, res.Action.Kind)
	assert.Equal(t, 0, res.MatchCount)
	assert.Empty(t, c.session().Belief.ListingMode)
}

func TestPartialSearchDeclined(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "mango"), inform(domain.SlotIngredients, "chicken"))

	res := c.say(intent(domain.IntentDeny))
	assert.Equal(t, domain.ActionStartOver, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)

	sess := c.session()
	assert.Equal(t, 0, sess.Belief.Constraints.Count())
	assert.Equal(t, 1, sess.History.Len())
}

func TestSingleConstraintZeroMatchesIsNotFound(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(inform(domain.SlotIngredients, "tofu"))
	assert.Equal(t, domain.ActionNotFound, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
}

func TestRandomAndReroll(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(intent(domain.IntentRequestRandom))
	assert.Equal(t, domain.ActionInform, res.Action.Kind)
	assert.Equal(t, "How about Chicken Rice?", res.Utterance)
	assert.Equal(t, domain.StateListedRandom, res.State)

	f.catalog.SetRandom(func(n int) int { return n - 1 })
	res = c.say(intent(domain.IntentDeny))
	assert.Equal(t, "How about Soup B?", res.Utterance)
	assert.Equal(t, domain.StateListedRandom, res.State)

	res = c.say(request(domain.SlotPrepTime))
	assert.Equal(t, "The preparation time of Soup B is 45 minutes.", res.Utterance)
	assert.Equal(t, domain.StateListedRandom, res.State)
}

func TestRequests(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(request(domain.SlotCookbook))
	assert.Equal(t, domain.ActionNotYetChosen, res.Action.Kind)

	c.say(inform(domain.SlotName, "Soup A"))
	res = c.say(request(domain.SlotPrepTime), request(domain.SlotLink))
	assert.Equal(t, domain.ActionInform, res.Action.Kind)
	assert.Equal(t, "I don't know the link of Soup A. The preparation time of Soup A is 30 minutes.", res.Utterance)
	assert.Equal(t, domain.StateChosen, res.State)
}

func TestFavorites(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	res := c.say(intent(domain.IntentSaveAsFavorite))
	assert.Equal(t, domain.ActionNotYetChosen, res.Action.Kind)

	res = c.say(intent(domain.IntentListFavorites))
	assert.Equal(t, "You don't have any favorites yet.", res.Utterance)
	assert.Equal(t, domain.StateStart, res.State)

	c.say(inform(domain.SlotName, "Soup B"))
	res = c.say(intent(domain.IntentSaveAsFavorite))
	assert.Equal(t, "I saved Soup B to your favorites.", res.Utterance)
	assert.Equal(t, domain.StateChosen, res.State)

	res = c.say(intent(domain.IntentListFavorites))
	assert.Equal(t, "Your only favorite is Soup B.", res.Utterance)
	assert.Equal(t, domain.StateListedFavorites, res.State)

	require.NoError(t, f.catalog.SetFavorite(context.Background(), "Soup A"))
	require.NoError(t, f.catalog.SetFavorite(context.Background(), "Mango Salad"))
	res = c.say(intent(domain.IntentListFavorites))
	assert.Equal(t, "You have 3 favorites: Mango Salad, Soup A and Soup B.", res.Utterance)

	res = c.say(intent(domain.IntentRemoveFromFavorites))
	assert.Equal(t, domain.ActionNotYetChosen, res.Action.Kind, "favorites list is not a chosen state")
}

func TestByeRestartsDialog(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotName, "Soup A"))

	res := c.say(intent(domain.IntentBye))
	assert.Equal(t, domain.ActionBye, res.Action.Kind)
	assert.True(t, res.Ended)
	assert.Equal(t, domain.StateStart, res.State)

	sess := c.session()
	assert.Nil(t, sess.Belief.Chosen)
	assert.Equal(t, 0, sess.History.Len())
	assert.Equal(t, 3, sess.TurnCount)

	assert.Equal(t, domain.ActionWelcome, c.say().Action.Kind)
}

func TestStartOverIntent(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotName, "Soup A"))

	res := c.say(intent(domain.IntentStartOver))
	assert.Equal(t, domain.ActionStartOver, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
	assert.Nil(t, c.session().Belief.Chosen)
}

func TestStartOverKeepsLaterIntents(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "leek"))

	res := c.say(intent(domain.IntentStartOver), inform(domain.SlotIngredients, "mango"))
	assert.Equal(t, domain.ActionStartOver, res.Action.Kind)
	assert.Equal(t, domain.StateStart, res.State)
	assert.Equal(t, 1, res.MatchCount)

	sess := c.session()
	assert.Equal(t, []string{"mango"}, sess.Belief.Constraints.Values(domain.SlotIngredients))
	assert.Equal(t, 1, sess.History.Len())

	res = c.say(intent(domain.IntentAffirm))
	assert.Equal(t, domain.ActionSelect, res.Action.Kind)
	assert.Equal(t, "Mango Salad", res.Action.Slots[domain.PayloadName])
}

func TestRemovingLastConstraintIsBad(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "leek"))

	res := c.say(domain.Intent{Kind: domain.IntentNegativeInform, Slot: domain.SlotIngredients, Value: "leek", Confidence: 1})
	assert.Equal(t, domain.ActionBad, res.Action.Kind)
	assert.Equal(t, domain.StateListedFound, res.State)
	assert.Equal(t, 0, c.session().Belief.Constraints.Count())
}

func TestBackendFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "leek"))
	before := c.session()

	f.flaky.fail(errors.New("dial tcp: connection refused"))
	res := c.say(inform(domain.SlotEase, "easy"))
	assert.Equal(t, domain.ActionBad, res.Action.Kind)
	assert.Equal(t, domain.ReasonUnavailable, res.Action.Slots[domain.PayloadReason])
	assert.Equal(t, domain.StateListedFound, res.State)

	res = c.say(intent(domain.IntentListFavorites))
	assert.Equal(t, domain.ActionBad, res.Action.Kind)

	after := c.session()
	if diff := cmp.Diff(before.BotState(), after.BotState()); diff != "" {
		t.Errorf("session changed by failed turns (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before.Belief, after.Belief); diff != "" {
		t.Errorf("belief changed by failed turns (-before +after):\n%s", diff)
	}

	f.flaky.fail(nil)
	assert.Equal(t, domain.ActionNarrowedDownToOne, c.say(inform(domain.SlotEase, "easy")).Action.Kind)
}

func TestCancelledTurnIsNotCommitted(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	before := c.session()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.dialog.Turn(ctx, c.tenant, c.id, []domain.Intent{inform(domain.SlotIngredients, "leek")})
	assert.ErrorIs(t, err, context.Canceled)

	after := c.session()
	assert.Equal(t, before.TurnCount, after.TurnCount)
	assert.Equal(t, before.Belief.Constraints.Count(), after.Belief.Constraints.Count())
}

func TestTurnUnknownSession(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	_, err := f.dialog.Turn(context.Background(), uuid.New(), c.id, nil)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, f.dialog.EndSession(context.Background(), c.tenant, c.id))
	assert.ErrorIs(t, f.dialog.EndSession(context.Background(), c.tenant, c.id), ErrSessionNotFound)

	_, err = f.dialog.BotState(context.Background(), c.tenant, c.id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTurnTextRequiresUnderstander(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	_, err := f.dialog.TurnText(context.Background(), c.tenant, c.id, "")
	assert.ErrorIs(t, err, ErrTextEmpty)
	_, err = f.dialog.TurnText(context.Background(), c.tenant, c.id, "hello")
	assert.ErrorIs(t, err, ErrNoUnderstander)
}

func TestConcurrentTurnsOnOneSessionAreSerialized(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)

	const turns = 20
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.dialog.Turn(context.Background(), c.tenant, c.id, []domain.Intent{intent(domain.IntentThanks)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sess := c.session()
	assert.Equal(t, turns+1, sess.TurnCount)
	assert.Equal(t, turns+1, sess.History.Len())
}

func TestBotState(t *testing.T) {
	f := newFixture(t, soups()...)
	c, _ := startConversation(t, f)
	c.say(inform(domain.SlotIngredients, "leek"))

	state, err := f.dialog.BotState(context.Background(), c.tenant, c.id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateListedFound, state.State)
	require.Len(t, state.History, 2)
	assert.Equal(t, domain.ActionFoundSome, state.History[1].Action.Kind)
}
