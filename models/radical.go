package models

// Radical-specific field ids.
const (
	FieldKanjiIDs = "kanji"
)

// Radical is a component shape taught before the kanji that use it.
type Radical struct {
	ItemBase
	// Ids of kanji derived from this radical. May point into any local
	// deck or the remote catalog.
	KanjiIDs []int64 `json:"kanjiIds,omitempty"`
}

// NewRadical builds an unlearned radical at the given curriculum level.
func NewRadical(id int64, characters string, english []string, level int) *Radical {
	return &Radical{
		ItemBase: ItemBase{
			ID:         id,
			Type:       TypeRadical,
			English:    english,
			Characters: characters,
			SRS:        NewSrsState(level),
		},
	}
}

func (r *Radical) GetValue(field string) (any, error) {
	if field == FieldKanjiIDs {
		return r.KanjiIDs, nil
	}
	return r.ItemBase.GetValue(field)
}

func (r *Radical) SetValue(field string, value any) error {
	if field == FieldKanjiIDs {
		r.KanjiIDs = toIDSlice(value)
		return nil
	}
	return r.ItemBase.SetValue(field, value)
}

func (r *Radical) ApplyPatch(patch map[string]any, resolve Resolver) []string {
	return applyPatch(r, patch, resolve, map[string]ItemType{
		FieldKanjiIDs: TypeKanji,
	})
}

func (r *Radical) ReviewPayload() ReviewPayload {
	p := r.baseReviewPayload("Radical")
	p.Radical = r.Characters
	return p
}

func (r *Radical) LessonPayload() LessonPayload {
	p := LessonPayload{
		ReviewPayload:   r.ReviewPayload(),
		MeaningMnemonic: r.MeaningMnemonic,
	}
	if r.Relationships != nil {
		p.MeaningNote = r.Relationships.MeaningNote
	}
	return p
}

func (r *Radical) ExportRow(lookup CharacterLookup) ExportItem {
	row := r.baseExportItem()
	row.Kanji = resolveCharacters(r.KanjiIDs, TypeKanji, lookup)
	return row
}
