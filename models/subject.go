package models

import "time"

// Subject is a remote-catalog radical/kanji/vocabulary definition, kept
// in the envelope shape the catalog API returns so cached pages can be
// stored verbatim.
type Subject struct {
	ID     int64       `json:"id"`
	Object string      `json:"object"` // "radical", "kanji", "vocabulary", "kana_vocabulary"
	Data   SubjectData `json:"data"`
}

type SubjectData struct {
	Characters  string           `json:"characters"`
	Slug        string           `json:"slug"`
	Level       int              `json:"level"`
	HiddenAt    *time.Time       `json:"hidden_at"`
	DocumentURL string           `json:"document_url,omitempty"`
	Meanings    []SubjectMeaning `json:"meanings"`
	Readings    []SubjectReading `json:"readings,omitempty"`
}

type SubjectMeaning struct {
	Meaning string `json:"meaning"`
	Primary bool   `json:"primary"`
}

type SubjectReading struct {
	Reading string `json:"reading"`
	Primary bool   `json:"primary"`
	Type    string `json:"type,omitempty"`
}

// Key implements the cache key contract.
func (s Subject) Key() int64 { return s.ID }

// ItemType maps the catalog's object tag onto the local variant set.
// Kana-only vocabulary counts as vocabulary.
func (s Subject) ItemType() (ItemType, bool) {
	switch s.Object {
	case "radical":
		return TypeRadical, true
	case "kanji":
		return TypeKanji, true
	case "vocabulary", "kana_vocabulary":
		return TypeVocabulary, true
	default:
		return "", false
	}
}

// Matches reports whether this subject is the live catalog entry for the
// given glyphs and type.
func (s Subject) Matches(characters string, typ ItemType) bool {
	subjectType, ok := s.ItemType()
	if !ok || subjectType != typ {
		return false
	}
	return s.Data.HiddenAt == nil && s.Data.Characters == characters
}

// Assignment is the remote catalog's record of the user's progress on a
// subject. Cached alongside subjects with the same bucket scheme.
type Assignment struct {
	ID     int64          `json:"id"`
	Object string         `json:"object"`
	Data   AssignmentData `json:"data"`
}

type AssignmentData struct {
	SubjectID   int64      `json:"subject_id"`
	SubjectType string     `json:"subject_type"`
	SrsStage    int        `json:"srs_stage"`
	UnlockedAt  *time.Time `json:"unlocked_at"`
	StartedAt   *time.Time `json:"started_at"`
	AvailableAt *time.Time `json:"available_at"`
	BurnedAt    *time.Time `json:"burned_at"`
}

// Key implements the cache key contract.
func (a Assignment) Key() int64 { return a.ID }
