package models

// Vocabulary-specific field ids.
const (
	FieldKana          = "kana"
	FieldKanjiRefs     = "kanjiRefs"
	FieldSentences     = "sentences"
	FieldPartsOfSpeech = "partsOfSpeech"
)

// Vocabulary is a word built from one or more kanji, answered with kana
// readings.
type Vocabulary struct {
	ItemBase
	Kana            []string `json:"kana"`
	ReadingMnemonic string   `json:"readingMnemonic,omitempty"`
	// Component kanji, by id.
	KanjiIDs          []int64            `json:"kanjiIds,omitempty"`
	SentencePairs     []Sentence         `json:"sentences,omitempty"`
	PartsOfSpeech     []string           `json:"partsOfSpeech,omitempty"`
	AuxiliaryReadings []AuxiliaryReading `json:"auxiliaryReadings,omitempty"`
}

// NewVocabulary builds an unlearned vocabulary word at the given
// curriculum level.
func NewVocabulary(id int64, characters string, english, kana []string, level int) *Vocabulary {
	return &Vocabulary{
		ItemBase: ItemBase{
			ID:         id,
			Type:       TypeVocabulary,
			English:    english,
			Characters: characters,
			SRS:        NewSrsState(level),
		},
		Kana: kana,
	}
}

func (v *Vocabulary) GetValue(field string) (any, error) {
	switch field {
	case FieldKana:
		return v.Kana, nil
	case FieldReadingMnemonic:
		return v.ReadingMnemonic, nil
	case FieldKanjiRefs:
		return v.KanjiIDs, nil
	case FieldSentences:
		return v.SentencePairs, nil
	case FieldPartsOfSpeech:
		return v.PartsOfSpeech, nil
	case FieldAuxiliaryReadings:
		return v.AuxiliaryReadings, nil
	default:
		return v.ItemBase.GetValue(field)
	}
}

func (v *Vocabulary) SetValue(field string, value any) error {
	switch field {
	case FieldKana:
		v.Kana = toStringSlice(value)
	case FieldReadingMnemonic:
		v.ReadingMnemonic = toString(value)
	case FieldKanjiRefs:
		v.KanjiIDs = toIDSlice(value)
	case FieldSentences:
		pairs, err := convertSliceVia[Sentence](value)
		if err != nil {
			return err
		}
		v.SentencePairs = pairs
	case FieldPartsOfSpeech:
		v.PartsOfSpeech = toStringSlice(value)
	case FieldAuxiliaryReadings:
		aux, err := convertSliceVia[AuxiliaryReading](value)
		if err != nil {
			return err
		}
		v.AuxiliaryReadings = aux
	default:
		return v.ItemBase.SetValue(field, value)
	}
	return nil
}

func (v *Vocabulary) ApplyPatch(patch map[string]any, resolve Resolver) []string {
	return applyPatch(v, patch, resolve, map[string]ItemType{
		FieldKanjiRefs: TypeKanji,
	})
}

func (v *Vocabulary) ReviewPayload() ReviewPayload {
	p := v.baseReviewPayload("Vocabulary")
	p.Vocabulary = v.Characters
	p.Kana = v.Kana
	p.AuxiliaryReadings = v.AuxiliaryReadings
	return p
}

func (v *Vocabulary) LessonPayload() LessonPayload {
	p := LessonPayload{
		ReviewPayload:   v.ReviewPayload(),
		MeaningMnemonic: v.MeaningMnemonic,
		ReadingMnemonic: v.ReadingMnemonic,
		ComponentIDs:    v.KanjiIDs,
	}
	if v.Relationships != nil {
		p.MeaningNote = v.Relationships.MeaningNote
		p.ReadingNote = v.Relationships.ReadingNote
	}
	return p
}

func (v *Vocabulary) ExportRow(lookup CharacterLookup) ExportItem {
	row := v.baseExportItem()
	row.Kana = v.Kana
	row.ReadingMnemonic = v.ReadingMnemonic
	row.SentencePairs = v.SentencePairs
	row.PartsOfSpeech = v.PartsOfSpeech
	row.AuxiliaryReadings = v.AuxiliaryReadings
	row.Kanji = resolveCharacters(v.KanjiIDs, TypeKanji, lookup)
	return row
}
