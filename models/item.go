package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ItemType tags the closed set of item variants.
type ItemType string

const (
	TypeRadical    ItemType = "radical"
	TypeKanji      ItemType = "kanji"
	TypeVocabulary ItemType = "vocabulary"
)

// ErrUnknownField is returned by keyed field access for ids no variant
// recognises.
var ErrUnknownField = errors.New("unknown field")

// Field ids shared by every variant. Variants add their own in their files.
const (
	FieldID                = "id"
	FieldType              = "type"
	FieldEnglish           = "english"
	FieldCharacters        = "characters"
	FieldMeaningMnemonic   = "meaningMnemonic"
	FieldRelationships     = "relationships"
	FieldAuxiliaryMeanings = "auxiliaryMeanings"
	FieldSrsStage          = "srsStage"
)

// Resolver maps a glyph string of a given type to an item or subject id.
// The second return is false when nothing local or remote matches.
type Resolver func(characters string, typ ItemType) (int64, bool)

// CharacterLookup is the inverse direction, used when exporting: id back
// to displayable characters.
type CharacterLookup func(id int64, typ ItemType) (string, bool)

// AuxiliaryMeaning whitelists or blacklists an alternative answer.
type AuxiliaryMeaning struct {
	Meaning string `json:"meaning"`
	Type    string `json:"type"` // "whitelist" or "blacklist"
}

// AuxiliaryReading is the reading-side counterpart of AuxiliaryMeaning.
type AuxiliaryReading struct {
	Reading string `json:"reading"`
	Type    string `json:"type"`
}

// StudyMaterial carries the user's own notes and synonyms for an item.
type StudyMaterial struct {
	MeaningNote string   `json:"meaningNote,omitempty"`
	ReadingNote string   `json:"readingNote,omitempty"`
	Synonyms    []string `json:"synonyms,omitempty"`
}

// Item is the closed union of radical, kanji and vocabulary entries.
// Every implementation embeds ItemBase and overrides field access and
// the queue projections for its own fields.
type Item interface {
	Base() *ItemBase
	GetValue(field string) (any, error)
	SetValue(field string, value any) error
	// ApplyPatch applies a partial field update, resolving character
	// lists in relationship fields to ids first. It returns a warning
	// per reference that could not be resolved.
	ApplyPatch(patch map[string]any, resolve Resolver) []string
	ReviewPayload() ReviewPayload
	LessonPayload() LessonPayload
	ExportRow(lookup CharacterLookup) ExportItem
}

// ItemBase holds the fields common to all variants.
type ItemBase struct {
	ID                int64              `json:"id"`
	Type              ItemType           `json:"type"`
	English           []string           `json:"english"`
	Characters        string             `json:"characters"`
	MeaningMnemonic   string             `json:"meaningMnemonic,omitempty"`
	Relationships     *StudyMaterial     `json:"relationships,omitempty"`
	AuxiliaryMeanings []AuxiliaryMeaning `json:"auxiliaryMeanings,omitempty"`
	SRS               SrsState           `json:"srs"`
}

func (b *ItemBase) Base() *ItemBase { return b }

// Review forwards a review outcome to the owned SRS state.
func (b *ItemBase) Review(mistakes int, now time.Time) {
	b.SRS.Review(mistakes, now)
}

// CompleteLesson forwards a finished lesson to the owned SRS state.
func (b *ItemBase) CompleteLesson(now time.Time) {
	b.SRS.CompleteLesson(now)
}

// IsPendingReview reports whether the item is both in the review
// pipeline and due.
func (b *ItemBase) IsPendingReview(gate int, now time.Time) bool {
	return b.SRS.IsReview(gate) && b.SRS.IsPending(now)
}

func (b *ItemBase) GetValue(field string) (any, error) {
	switch field {
	case FieldID:
		return b.ID, nil
	case FieldType:
		return string(b.Type), nil
	case FieldEnglish:
		return b.English, nil
	case FieldCharacters:
		return b.Characters, nil
	case FieldMeaningMnemonic:
		return b.MeaningMnemonic, nil
	case FieldRelationships:
		return b.Relationships, nil
	case FieldAuxiliaryMeanings:
		return b.AuxiliaryMeanings, nil
	case FieldSrsStage:
		return b.SRS.Stage, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

func (b *ItemBase) SetValue(field string, value any) error {
	switch field {
	case FieldEnglish:
		b.English = toStringSlice(value)
	case FieldCharacters:
		b.Characters = toString(value)
	case FieldMeaningMnemonic:
		b.MeaningMnemonic = toString(value)
	case FieldRelationships:
		rel, err := convertVia[StudyMaterial](value)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		b.Relationships = rel
	case FieldAuxiliaryMeanings:
		aux, err := convertSliceVia[AuxiliaryMeaning](value)
		if err != nil {
			return fmt.Errorf("field %q: %w", field, err)
		}
		b.AuxiliaryMeanings = aux
	case FieldSrsStage:
		stage, ok := toInt(value)
		if !ok {
			return fmt.Errorf("field %q: not a number", field)
		}
		b.SRS.Stage = stage
		if stage >= StageGuru {
			b.SRS.Passed = true
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Validate checks the invariants shared by every variant.
func (b *ItemBase) Validate() error {
	if len(b.English) == 0 {
		return errors.New("item needs at least one meaning")
	}
	switch b.Type {
	case TypeRadical, TypeKanji, TypeVocabulary:
	default:
		return fmt.Errorf("unknown item type %q", b.Type)
	}
	return b.SRS.Validate()
}

// DecodeItem reconstructs a typed item from its persisted JSON form by
// switching on the type tag. The switch is exhaustive over ItemType; an
// unknown tag is a decode error, never a partial item.
func DecodeItem(raw json.RawMessage) (Item, error) {
	var tag struct {
		Type ItemType `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("decode item tag: %w", err)
	}

	var item Item
	switch tag.Type {
	case TypeRadical:
		item = &Radical{}
	case TypeKanji:
		item = &Kanji{}
	case TypeVocabulary:
		item = &Vocabulary{}
	default:
		return nil, fmt.Errorf("unknown item type %q", tag.Type)
	}

	if err := json.Unmarshal(raw, item); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag.Type, err)
	}
	if err := item.Base().Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag.Type, err)
	}
	return item, nil
}

// applyPatch is the shared patch walk. Relationship fields listed in
// refFields hold glyph lists that are resolved to ids before assignment;
// references that resolve to nothing are dropped and reported, never
// stored as a placeholder id.
func applyPatch(item Item, patch map[string]any, resolve Resolver, refFields map[string]ItemType) []string {
	var warnings []string
	for field, value := range patch {
		refType, isRef := refFields[field]
		if !isRef {
			if err := item.SetValue(field, value); err != nil {
				warnings = append(warnings, err.Error())
			}
			continue
		}

		var ids []int64
		for _, chars := range toStringSlice(value) {
			id, ok := resolve(chars, refType)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("could not resolve %s %q", refType, chars))
				continue
			}
			ids = append(ids, id)
		}
		if err := item.SetValue(field, ids); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}

// Coercion helpers for values arriving from decoded JSON patches, where
// slices show up as []any and numbers as float64.

func toString(value any) string {
	s, _ := value.(string)
	return s
}

func toInt(value any) (int, bool) {
	switch n := value.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

func toIDSlice(value any) []int64 {
	switch v := value.(type) {
	case []int64:
		return v
	case []any:
		out := make([]int64, 0, len(v))
		for _, e := range v {
			switch n := e.(type) {
			case float64:
				out = append(out, int64(n))
			case int64:
				out = append(out, n)
			case int:
				out = append(out, int64(n))
			}
		}
		return out
	default:
		return nil
	}
}

// convertVia round-trips an arbitrary decoded value through JSON into a
// concrete struct pointer.
func convertVia[T any](value any) (*T, error) {
	if value == nil {
		return nil, nil
	}
	if typed, ok := value.(*T); ok {
		return typed, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func convertSliceVia[T any](value any) ([]T, error) {
	if value == nil {
		return nil, nil
	}
	if typed, ok := value.([]T); ok {
		return typed, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
