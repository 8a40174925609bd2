package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDeck() *Deck {
	deck := &Deck{Name: "JLPT N5", DeckID: "abc123"}
	deck.AddItem(NewRadical(-1, "亻", []string{"person"}, 1))
	deck.AddItem(NewKanji(-2, "火", []string{"fire"}, 1))
	deck.AddItem(NewVocabulary(-3, "火山", []string{"volcano"}, []string{"かざん"}, 1))
	return deck
}

func TestDeckItemOperations(t *testing.T) {
	deck := sampleDeck()

	replacement := NewKanji(-2, "水", []string{"water"}, 1)
	require.True(t, deck.UpdateItem(replacement))
	item, ok := deck.ItemByID(-2)
	require.True(t, ok)
	assert.Equal(t, "水", item.Base().Characters)

	assert.False(t, deck.UpdateItem(NewKanji(-99, "休", []string{"rest"}, 1)))

	require.True(t, deck.RemoveItem(-1))
	assert.False(t, deck.RemoveItem(-1), "already removed")
	assert.Len(t, deck.Items, 2)
}

func TestItemByCharacters(t *testing.T) {
	deck := sampleDeck()

	item, ok := deck.ItemByCharacters("火", TypeKanji)
	require.True(t, ok)
	assert.Equal(t, int64(-2), item.Base().ID)

	_, ok = deck.ItemByCharacters("火", TypeRadical)
	assert.False(t, ok, "type has to match")
}

func TestLevelBreakdownPartitionsItems(t *testing.T) {
	deck := &Deck{Name: "bands"}
	for stage := 0; stage <= 9; stage++ {
		item := NewKanji(int64(-stage-1), "火", []string{"fire"}, 1)
		item.SRS.Stage = stage
		deck.AddItem(item)
	}

	breakdown := deck.GenerateLevelBreakdown()
	assert.Equal(t, 1, breakdown.Lesson)
	assert.Equal(t, 4, breakdown.Apprentice)
	assert.Equal(t, 2, breakdown.Guru)
	assert.Equal(t, 1, breakdown.Master)
	assert.Equal(t, 1, breakdown.Enlightened)
	assert.Equal(t, 1, breakdown.Burned)
	assert.Equal(t, 0, breakdown.Locked)

	total := breakdown.Lesson + breakdown.Apprentice + breakdown.Guru +
		breakdown.Master + breakdown.Enlightened + breakdown.Burned + breakdown.Locked
	assert.Equal(t, len(deck.Items), total, "counts partition the item set")
}

func TestDeckJSONRoundTrip(t *testing.T) {
	deck := sampleDeck()

	raw, err := json.Marshal(deck)
	require.NoError(t, err)

	var restored Deck
	require.NoError(t, json.Unmarshal(raw, &restored))

	assert.Equal(t, deck.Name, restored.Name)
	assert.Equal(t, deck.DeckID, restored.DeckID)
	require.Len(t, restored.Items, 3)
	assert.IsType(t, &Radical{}, restored.Items[0])
	assert.IsType(t, &Kanji{}, restored.Items[1])
	assert.IsType(t, &Vocabulary{}, restored.Items[2])
}
