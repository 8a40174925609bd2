package models

// ReviewPayload is the projection the host page's review queue expects.
// The glyphs live under a per-variant key (rad/kan/voc) because that is
// how the host addresses them.
type ReviewPayload struct {
	ID                int64              `json:"id"`
	Type              string             `json:"type"` // "Radical", "Kanji", "Vocabulary"
	English           []string           `json:"en"`
	Radical           string             `json:"rad,omitempty"`
	Kanji             string             `json:"kan,omitempty"`
	Vocabulary        string             `json:"voc,omitempty"`
	Onyomi            []string           `json:"on,omitempty"`
	Kunyomi           []string           `json:"kun,omitempty"`
	Nanori            []string           `json:"nanori,omitempty"`
	Emphasis          string             `json:"emph,omitempty"`
	Kana              []string           `json:"kana,omitempty"`
	SrsStage          int                `json:"srs"`
	AuxiliaryMeanings []AuxiliaryMeaning `json:"auxiliary_meanings,omitempty"`
	AuxiliaryReadings []AuxiliaryReading `json:"auxiliary_readings,omitempty"`
	Synonyms          []string           `json:"syn,omitempty"`
}

// LessonPayload extends the review projection with the teaching material
// shown during a lesson.
type LessonPayload struct {
	ReviewPayload
	MeaningMnemonic string  `json:"mmne,omitempty"`
	ReadingMnemonic string  `json:"rmne,omitempty"`
	MeaningNote     string  `json:"mhnt,omitempty"`
	ReadingNote     string  `json:"rhnt,omitempty"`
	ComponentIDs    []int64 `json:"components,omitempty"`
}

// ExportItem is the portable form of an item: cross-references are
// serialized as glyph strings so a deck survives moving to an
// installation with a different id space.
type ExportItem struct {
	Type              ItemType           `json:"type"`
	English           []string           `json:"english"`
	Characters        string             `json:"characters"`
	Level             int                `json:"level,omitempty"`
	MeaningMnemonic   string             `json:"meaningMnemonic,omitempty"`
	ReadingMnemonic   string             `json:"readingMnemonic,omitempty"`
	Onyomi            []string           `json:"onyomi,omitempty"`
	Kunyomi           []string           `json:"kunyomi,omitempty"`
	Nanori            []string           `json:"nanori,omitempty"`
	Emphasis          string             `json:"emphasis,omitempty"`
	Kana              []string           `json:"kana,omitempty"`
	Radicals          []string           `json:"radicals,omitempty"`
	Kanji             []string           `json:"kanji,omitempty"`
	Vocabulary        []string           `json:"vocabulary,omitempty"`
	SentencePairs     []Sentence         `json:"sentences,omitempty"`
	PartsOfSpeech     []string           `json:"partsOfSpeech,omitempty"`
	Relationships     *StudyMaterial     `json:"relationships,omitempty"`
	AuxiliaryMeanings []AuxiliaryMeaning `json:"auxiliaryMeanings,omitempty"`
	AuxiliaryReadings []AuxiliaryReading `json:"auxiliaryReadings,omitempty"`
}

// DeckExport is the portable form of a whole deck.
type DeckExport struct {
	Name        string       `json:"name"`
	Author      string       `json:"author,omitempty"`
	Description string       `json:"description,omitempty"`
	DeckID      string       `json:"deckId,omitempty"`
	Items       []ExportItem `json:"items"`
}

// Sentence is a Japanese/English example pair on a vocabulary item.
type Sentence struct {
	Japanese string `json:"ja"`
	English  string `json:"en"`
}

func (b *ItemBase) baseReviewPayload(typeName string) ReviewPayload {
	p := ReviewPayload{
		ID:                b.ID,
		Type:              typeName,
		English:           b.English,
		SrsStage:          b.SRS.Stage,
		AuxiliaryMeanings: b.AuxiliaryMeanings,
	}
	if b.Relationships != nil {
		p.Synonyms = b.Relationships.Synonyms
	}
	return p
}

func (b *ItemBase) baseExportItem() ExportItem {
	return ExportItem{
		Type:              b.Type,
		English:           b.English,
		Characters:        b.Characters,
		Level:             b.SRS.Level,
		MeaningMnemonic:   b.MeaningMnemonic,
		Relationships:     b.Relationships,
		AuxiliaryMeanings: b.AuxiliaryMeanings,
	}
}

// resolveCharacters maps a list of ids back to glyphs, dropping ids the
// lookup no longer knows about.
func resolveCharacters(ids []int64, typ ItemType, lookup CharacterLookup) []string {
	var out []string
	for _, id := range ids {
		if chars, ok := lookup(id, typ); ok {
			out = append(out, chars)
		}
	}
	return out
}
