package models

// Kanji-specific field ids.
const (
	FieldOnyomi            = "onyomi"
	FieldKunyomi           = "kunyomi"
	FieldNanori            = "nanori"
	FieldEmphasis          = "emphasis"
	FieldReadingMnemonic   = "readingMnemonic"
	FieldRadicalIDs        = "radicals"
	FieldVocabularyIDs     = "vocabulary"
	FieldAuxiliaryReadings = "auxiliaryReadings"
)

// Kanji is a character with its readings, component radicals and the
// vocabulary derived from it.
type Kanji struct {
	ItemBase
	Onyomi          []string `json:"onyomi,omitempty"`
	Kunyomi         []string `json:"kunyomi,omitempty"`
	Nanori          []string `json:"nanori,omitempty"`
	Emphasis        string   `json:"emphasis,omitempty"` // "onyomi" or "kunyomi"
	ReadingMnemonic string   `json:"readingMnemonic,omitempty"`
	// Component radicals and derived vocabulary, by id.
	RadicalIDs        []int64            `json:"radicalIds,omitempty"`
	VocabularyIDs     []int64            `json:"vocabularyIds,omitempty"`
	AuxiliaryReadings []AuxiliaryReading `json:"auxiliaryReadings,omitempty"`
}

// NewKanji builds an unlearned kanji at the given curriculum level.
func NewKanji(id int64, characters string, english []string, level int) *Kanji {
	return &Kanji{
		ItemBase: ItemBase{
			ID:         id,
			Type:       TypeKanji,
			English:    english,
			Characters: characters,
			SRS:        NewSrsState(level),
		},
	}
}

func (k *Kanji) GetValue(field string) (any, error) {
	switch field {
	case FieldOnyomi:
		return k.Onyomi, nil
	case FieldKunyomi:
		return k.Kunyomi, nil
	case FieldNanori:
		return k.Nanori, nil
	case FieldEmphasis:
		return k.Emphasis, nil
	case FieldReadingMnemonic:
		return k.ReadingMnemonic, nil
	case FieldRadicalIDs:
		return k.RadicalIDs, nil
	case FieldVocabularyIDs:
		return k.VocabularyIDs, nil
	case FieldAuxiliaryReadings:
		return k.AuxiliaryReadings, nil
	default:
		return k.ItemBase.GetValue(field)
	}
}

func (k *Kanji) SetValue(field string, value any) error {
	switch field {
	case FieldOnyomi:
		k.Onyomi = toStringSlice(value)
	case FieldKunyomi:
		k.Kunyomi = toStringSlice(value)
	case FieldNanori:
		k.Nanori = toStringSlice(value)
	case FieldEmphasis:
		k.Emphasis = toString(value)
	case FieldReadingMnemonic:
		k.ReadingMnemonic = toString(value)
	case FieldRadicalIDs:
		k.RadicalIDs = toIDSlice(value)
	case FieldVocabularyIDs:
		k.VocabularyIDs = toIDSlice(value)
	case FieldAuxiliaryReadings:
		aux, err := convertSliceVia[AuxiliaryReading](value)
		if err != nil {
			return err
		}
		k.AuxiliaryReadings = aux
	default:
		return k.ItemBase.SetValue(field, value)
	}
	return nil
}

func (k *Kanji) ApplyPatch(patch map[string]any, resolve Resolver) []string {
	return applyPatch(k, patch, resolve, map[string]ItemType{
		FieldRadicalIDs:    TypeRadical,
		FieldVocabularyIDs: TypeVocabulary,
	})
}

func (k *Kanji) ReviewPayload() ReviewPayload {
	p := k.baseReviewPayload("Kanji")
	p.Kanji = k.Characters
	p.Onyomi = k.Onyomi
	p.Kunyomi = k.Kunyomi
	p.Nanori = k.Nanori
	p.Emphasis = k.Emphasis
	p.AuxiliaryReadings = k.AuxiliaryReadings
	return p
}

func (k *Kanji) LessonPayload() LessonPayload {
	p := LessonPayload{
		ReviewPayload:   k.ReviewPayload(),
		MeaningMnemonic: k.MeaningMnemonic,
		ReadingMnemonic: k.ReadingMnemonic,
		ComponentIDs:    k.RadicalIDs,
	}
	if k.Relationships != nil {
		p.MeaningNote = k.Relationships.MeaningNote
		p.ReadingNote = k.Relationships.ReadingNote
	}
	return p
}

func (k *Kanji) ExportRow(lookup CharacterLookup) ExportItem {
	row := k.baseExportItem()
	row.Onyomi = k.Onyomi
	row.Kunyomi = k.Kunyomi
	row.Nanori = k.Nanori
	row.Emphasis = k.Emphasis
	row.ReadingMnemonic = k.ReadingMnemonic
	row.AuxiliaryReadings = k.AuxiliaryReadings
	row.Radicals = resolveCharacters(k.RadicalIDs, TypeRadical, lookup)
	row.Vocabulary = resolveCharacters(k.VocabularyIDs, TypeVocabulary, lookup)
	return row
}
