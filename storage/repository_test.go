package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gorbit99/wics-extension-sub000/models"
)

var frozen = time.Date(2024, 5, 20, 10, 42, 11, 0, time.UTC)

func newTestRepo(t *testing.T) (*DeckRepository, *clock) {
	t.Helper()
	clk := &clock{now: frozen}
	repo := NewDeckRepository(NewMemoryStore(), nil)
	repo.now = clk.Now
	return repo, clk
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func mustAddDeck(t *testing.T, repo *DeckRepository, name string) *models.Deck {
	t.Helper()
	deck := &models.Deck{Name: name}
	require.NoError(t, repo.AddDeck(context.Background(), deck))
	return deck
}

func TestAddDeck(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	deck := mustAddDeck(t, repo, "JLPT N5")
	assert.NotEmpty(t, deck.DeckID, "an opaque deck id is assigned")
	assert.Equal(t, frozen, deck.LastUpdated)

	assert.ErrorIs(t, repo.AddDeck(ctx, &models.Deck{Name: "JLPT N5"}), ErrDeckExists)
	assert.ErrorIs(t, repo.AddDeck(ctx, &models.Deck{}), ErrNameRequired)

	decks, err := repo.GetAllDecks(ctx)
	require.NoError(t, err)
	assert.Len(t, decks, 1)
}

func TestUpdateDeckRename(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "old name")
	mustAddDeck(t, repo, "taken")

	err := repo.UpdateDeck(ctx, "old name", &models.Deck{Name: "taken"})
	assert.ErrorIs(t, err, ErrDeckExists)

	require.NoError(t, repo.UpdateDeck(ctx, "old name", &models.Deck{Name: "new name"}))
	deck, err := repo.GetDeckByName(ctx, "new name")
	require.NoError(t, err)
	assert.NotEmpty(t, deck.DeckID, "deck id survives a rename")

	_, err = repo.GetDeckByName(ctx, "old name")
	assert.ErrorIs(t, err, ErrDeckNotFound)

	err = repo.UpdateDeck(ctx, "gone", &models.Deck{Name: "whatever"})
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestDeleteDeckCascades(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "doomed")
	_, err := repo.CreateItem(ctx, "doomed", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteDeck(ctx, "doomed"))
	assert.ErrorIs(t, repo.DeleteDeck(ctx, "doomed"), ErrDeckNotFound)

	items, err := repo.GetItemsFromIDs(ctx, []int64{-1})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetDeckByDeckID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	deck := mustAddDeck(t, repo, "named")

	found, err := repo.GetDeckByDeckID(ctx, deck.DeckID)
	require.NoError(t, err)
	assert.Equal(t, "named", found.Name)

	_, err = repo.GetDeckByDeckID(ctx, "nope")
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestNextIDWatermark(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), id, "empty repository starts at -1")

	mustAddDeck(t, repo, "a")
	item, err := repo.CreateItem(ctx, "a", models.NewRadical(0, "亻", []string{"person"}, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), item.Base().ID)

	id, err = repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), id)

	// The allocator only looks at live items, so a freed id comes back.
	second, err := repo.CreateItem(ctx, "a", models.NewRadical(0, "冂", []string{"head"}, 1))
	require.NoError(t, err)
	require.NoError(t, repo.DeleteItem(ctx, "a", second.Base().ID))

	id, err = repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-2), id)
}

func TestGetItemsFromIDsIsBestEffort(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "a")
	mustAddDeck(t, repo, "b")
	first, err := repo.CreateItem(ctx, "a", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)
	second, err := repo.CreateItem(ctx, "b", models.NewKanji(0, "水", []string{"water"}, 1))
	require.NoError(t, err)

	items, err := repo.GetItemsFromIDs(ctx, []int64{first.Base().ID, 4242, second.Base().ID})
	require.NoError(t, err)
	require.Len(t, items, 2, "ids that resolve to nothing are dropped")
	assert.Equal(t, "火", items[0].Base().Characters)
	assert.Equal(t, "水", items[1].Base().Characters)
}

func TestPendingQueries(t *testing.T) {
	repo, clk := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	lesson, err := repo.CreateItem(ctx, "deck", models.NewRadical(0, "亻", []string{"person"}, 1))
	require.NoError(t, err)
	review, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)
	gated, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "水", []string{"water"}, 40))
	require.NoError(t, err)

	require.NoError(t, repo.HandleLessonCompletion(ctx, []int64{review.Base().ID, gated.Base().ID}))

	lessons, err := repo.GetPendingLessons(ctx, 0)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, lesson.Base().ID, lessons[0].ID)

	// Immediately after the lesson nothing is due yet.
	ids, err := repo.GetPendingReviewIDs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)

	clk.Advance(4 * time.Hour)
	ids, err = repo.GetPendingReviewIDs(ctx, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{review.Base().ID, gated.Base().ID}, ids)

	// A level gate below the item's unlock level hides it.
	ids, err = repo.GetPendingReviewIDs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{review.Base().ID}, ids)
}

func TestHandleLessonCompletionSkipsForeignIDs(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	item, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)

	// 8274 is a host-site id; it must not error.
	require.NoError(t, repo.HandleLessonCompletion(ctx, []int64{8274, item.Base().ID}))

	deck, err := repo.GetDeckByName(ctx, "deck")
	require.NoError(t, err)
	stored, _ := deck.ItemByID(item.Base().ID)
	assert.Equal(t, 1, stored.Base().SRS.Stage)
}

// The end-to-end scenario: lesson completion makes the item due after
// the stage-1 interval, and a progress report of one correct plus one
// incorrect answer feeds mistakes=2 into the stage machine, which keeps
// the item at stage 1.
func TestLessonThenProgressScenario(t *testing.T) {
	repo, clk := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	item, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)
	id := item.Base().ID

	require.NoError(t, repo.HandleLessonCompletion(ctx, []int64{id}))

	ids, err := repo.GetPendingReviewIDs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, ids, "not due before the stage-1 interval")

	clk.Advance(4 * time.Hour)
	ids, err = repo.GetPendingReviewIDs(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{id}, ids)

	require.NoError(t, repo.HandleProgressMade(ctx, map[int64]ReviewOutcome{
		id:   {Correct: 1, Incorrect: 1},
		9999: {Correct: 2, Incorrect: 0}, // host-site id, skipped
	}))

	deck, err := repo.GetDeckByName(ctx, "deck")
	require.NoError(t, err)
	stored, _ := deck.ItemByID(id)
	assert.Equal(t, 1, stored.Base().SRS.Stage)
}

func TestSetItemValue(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	item, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)

	updated, err := repo.SetItemValue(ctx, "deck", item.Base().ID, models.FieldOnyomi, []any{"か"})
	require.NoError(t, err)
	assert.Equal(t, []string{"か"}, updated.(*models.Kanji).Onyomi)

	updated, err = repo.SetItemValue(ctx, "deck", item.Base().ID, models.FieldSrsStage, float64(2))
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Base().SRS.Stage)

	_, err = repo.SetItemValue(ctx, "deck", item.Base().ID, "bogus", "x")
	assert.ErrorIs(t, err, models.ErrUnknownField)

	_, err = repo.SetItemValue(ctx, "deck", 123, models.FieldOnyomi, []any{"か"})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetItemValueRefusesInvalidWrites(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	item, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)

	_, err = repo.SetItemValue(ctx, "deck", item.Base().ID, models.FieldEnglish, []any{})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = repo.SetItemValue(ctx, "deck", item.Base().ID, models.FieldSrsStage, float64(12))
	assert.ErrorIs(t, err, ErrInvalidItem, "stage writes are bounded by the stage machine")

	decks, err := repo.GetAllDecks(ctx)
	require.NoError(t, err)
	stored, ok := decks[0].ItemByID(item.Base().ID)
	require.True(t, ok)
	assert.Equal(t, []string{"fire"}, stored.Base().English)
	assert.Equal(t, 0, stored.Base().SRS.Stage)
}

func TestUpdateItemFieldsRefusesInvalidPatches(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	item, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)

	_, _, err = repo.UpdateItemFields(ctx, "deck", item.Base().ID, map[string]any{
		models.FieldEnglish: []any{},
	})
	assert.ErrorIs(t, err, ErrInvalidItem)

	// Nothing was persisted: the collection still loads and the item is
	// untouched.
	decks, err := repo.GetAllDecks(ctx)
	require.NoError(t, err)
	stored, ok := decks[0].ItemByID(item.Base().ID)
	require.True(t, ok)
	assert.Equal(t, []string{"fire"}, stored.Base().English)
}

func TestUpdateItemFieldsResolvesAcrossDecks(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	mustAddDeck(t, repo, "radicals")
	mustAddDeck(t, repo, "kanji")
	radical, err := repo.CreateItem(ctx, "radicals", models.NewRadical(0, "亻", []string{"person"}, 1))
	require.NoError(t, err)
	kanji, err := repo.CreateItem(ctx, "kanji", models.NewKanji(0, "休", []string{"rest"}, 1))
	require.NoError(t, err)

	updated, warnings, err := repo.UpdateItemFields(ctx, "kanji", kanji.Base().ID, map[string]any{
		models.FieldRadicalIDs: []any{"亻", "missing"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{radical.Base().ID}, updated.(*models.Kanji).RadicalIDs)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "missing")
}

type fakeCatalog struct {
	byCharacters map[string]int64
	characters   map[int64]string
	types        map[int64]models.ItemType
}

func (f *fakeCatalog) ResolveCharacters(_ context.Context, characters string, _ models.ItemType) (int64, bool) {
	id, ok := f.byCharacters[characters]
	return id, ok
}

func (f *fakeCatalog) CharactersByID(_ context.Context, id int64) (string, models.ItemType, bool) {
	characters, ok := f.characters[id]
	if !ok {
		return "", "", false
	}
	return characters, f.types[id], true
}

func TestResolveCharactersPrefersLocalDecks(t *testing.T) {
	catalog := &fakeCatalog{
		byCharacters: map[string]int64{"火": 440, "亻": 444},
		characters:   map[int64]string{440: "火", 444: "亻"},
		types:        map[int64]models.ItemType{440: models.TypeKanji, 444: models.TypeRadical},
	}
	repo := NewDeckRepository(NewMemoryStore(), catalog)
	repo.now = func() time.Time { return frozen }
	ctx := context.Background()

	mustAddDeck(t, repo, "deck")
	local, err := repo.CreateItem(ctx, "deck", models.NewKanji(0, "火", []string{"fire"}, 1))
	require.NoError(t, err)

	id, ok := repo.ResolveCharacters(ctx, "火", models.TypeKanji)
	require.True(t, ok)
	assert.Equal(t, local.Base().ID, id, "local decks win over the catalog")

	id, ok = repo.ResolveCharacters(ctx, "亻", models.TypeRadical)
	require.True(t, ok)
	assert.Equal(t, int64(444), id, "catalog fills the gaps")

	_, ok = repo.ResolveCharacters(ctx, "龍", models.TypeKanji)
	assert.False(t, ok)
}
