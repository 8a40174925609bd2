package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Deck is a named, ordered collection of user-authored items.
type Deck struct {
	Name        string `json:"name"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	// DeckID is an opaque id that survives export/import and is used to
	// recognise a re-import of the same deck under a colliding name.
	DeckID      string    `json:"deckId"`
	LastUpdated time.Time `json:"lastUpdated"`
	Items       []Item    `json:"items"`
}

// LevelBreakdown counts a deck's items per broad SRS band. Locked is
// always zero: custom items have no prerequisite-lock concept.
type LevelBreakdown struct {
	Lesson      int `json:"lesson"`
	Apprentice  int `json:"apprentice"`
	Guru        int `json:"guru"`
	Master      int `json:"master"`
	Enlightened int `json:"enlightened"`
	Burned      int `json:"burned"`
	Locked      int `json:"locked"`
}

// AddItem appends an item to the deck.
func (d *Deck) AddItem(item Item) {
	d.Items = append(d.Items, item)
}

// UpdateItem replaces the item with the same id. Returns false when no
// item matches.
func (d *Deck) UpdateItem(item Item) bool {
	for i, existing := range d.Items {
		if existing.Base().ID == item.Base().ID {
			d.Items[i] = item
			return true
		}
	}
	return false
}

// RemoveItem drops the item with the given id. Returns false when no
// item matches.
func (d *Deck) RemoveItem(id int64) bool {
	for i, existing := range d.Items {
		if existing.Base().ID == id {
			d.Items = append(d.Items[:i], d.Items[i+1:]...)
			return true
		}
	}
	return false
}

// ItemByID finds an item in this deck.
func (d *Deck) ItemByID(id int64) (Item, bool) {
	for _, item := range d.Items {
		if item.Base().ID == id {
			return item, true
		}
	}
	return nil, false
}

// ItemByCharacters finds an item by its glyphs and type.
func (d *Deck) ItemByCharacters(characters string, typ ItemType) (Item, bool) {
	for _, item := range d.Items {
		if item.Base().Type == typ && item.Base().Characters == characters {
			return item, true
		}
	}
	return nil, false
}

// GenerateLevelBreakdown classifies every item into exactly one band, so
// the counts always sum to the deck's item count.
func (d *Deck) GenerateLevelBreakdown() LevelBreakdown {
	var breakdown LevelBreakdown
	for _, item := range d.Items {
		switch item.Base().SRS.GetBroadLevel() {
		case BroadLesson:
			breakdown.Lesson++
		case BroadApprentice:
			breakdown.Apprentice++
		case BroadGuru:
			breakdown.Guru++
		case BroadMaster:
			breakdown.Master++
		case BroadEnlightened:
			breakdown.Enlightened++
		case BroadBurned:
			breakdown.Burned++
		}
	}
	return breakdown
}

// Export produces the portable deck form, serializing cross-references
// through the lookup so the result is independent of local ids.
func (d *Deck) Export(lookup CharacterLookup) DeckExport {
	export := DeckExport{
		Name:        d.Name,
		Author:      d.Author,
		Description: d.Description,
		DeckID:      d.DeckID,
		Items:       make([]ExportItem, 0, len(d.Items)),
	}
	for _, item := range d.Items {
		export.Items = append(export.Items, item.ExportRow(lookup))
	}
	return export
}

// UnmarshalJSON rehydrates a persisted deck, reconstructing each typed
// item through DecodeItem instead of trusting the stored shape.
func (d *Deck) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string            `json:"name"`
		Author      string            `json:"author"`
		Description string            `json:"description"`
		DeckID      string            `json:"deckId"`
		LastUpdated time.Time         `json:"lastUpdated"`
		Items       []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode deck: %w", err)
	}

	d.Name = raw.Name
	d.Author = raw.Author
	d.Description = raw.Description
	d.DeckID = raw.DeckID
	d.LastUpdated = raw.LastUpdated
	d.Items = make([]Item, 0, len(raw.Items))
	for _, rawItem := range raw.Items {
		item, err := DecodeItem(rawItem)
		if err != nil {
			return fmt.Errorf("deck %q: %w", raw.Name, err)
		}
		d.Items = append(d.Items, item)
	}
	return nil
}
