package storage

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gorbit99/wics-extension-sub000/models"
)

// ImportReport summarises what an import did: rows brought in, whether
// an existing deck was updated in place, whether the deck had to be
// renamed, and a warning per dropped row or unresolved cross-reference.
type ImportReport struct {
	DeckName string   `json:"deckName"`
	Imported int      `json:"imported"`
	Updated  bool     `json:"updated"`
	Renamed  bool     `json:"renamed"`
	Warnings []string `json:"warnings,omitempty"`
}

// ImportDeck materialises a portable deck export locally. A deck with
// the same DeckID is updated in place (progress on its old items is
// discarded; the export is the source of truth). A colliding name on a
// new deck is suffixed rather than rejected, since imports are
// best-effort. Fresh negative ids are assigned in row encounter order
// from the current watermark; cross-references resolve against the
// imported rows themselves, other local decks, and finally the remote
// catalog, and are dropped with a warning when nothing matches.
func (r *DeckRepository) ImportDeck(ctx context.Context, export models.DeckExport) (*ImportReport, error) {
	if export.Name == "" {
		return nil, ErrNameRequired
	}

	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}

	var target *models.Deck
	if export.DeckID != "" {
		for _, deck := range decks {
			if deck.DeckID == export.DeckID {
				target = deck
				break
			}
		}
	}

	if target != nil {
		report.Updated = true
		target.Items = nil
		if export.Name != target.Name {
			if deckByName(decks, export.Name) != nil {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("kept name %q: %q is already in use", target.Name, export.Name))
			} else {
				target.Name = export.Name
			}
		}
	} else {
		name := export.Name
		for suffix := 2; deckByName(decks, name) != nil; suffix++ {
			name = fmt.Sprintf("%s (imported %d)", export.Name, suffix)
			report.Renamed = true
		}
		if report.Renamed {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("renamed deck to %q: %q is already in use", name, export.Name))
		}

		deckID := export.DeckID
		if deckID == "" {
			if deckID, err = gonanoid.New(); err != nil {
				return nil, fmt.Errorf("generate deck id: %w", err)
			}
		}
		target = &models.Deck{Name: name, DeckID: deckID}
		decks = append(decks, target)
	}

	target.Author = export.Author
	target.Description = export.Description
	target.LastUpdated = r.now()
	report.DeckName = target.Name

	// First pass: materialise rows with fresh ids so the second pass can
	// resolve references between rows of the same import.
	watermark := nextID(decks)
	var imported []models.Item
	var rows []models.ExportItem
	for i, row := range export.Items {
		item, err := itemFromExport(row, watermark)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("skipped row %d: %v", i+1, err))
			continue
		}
		watermark--
		imported = append(imported, item)
		rows = append(rows, row)
	}
	target.Items = imported
	report.Imported = len(imported)

	// Second pass: cross-references.
	resolve := r.resolverOver(ctx, decks)
	for i, item := range imported {
		row := rows[i]
		switch typed := item.(type) {
		case *models.Radical:
			typed.KanjiIDs = resolveRefs(resolve, row.Kanji, models.TypeKanji, report)
		case *models.Kanji:
			typed.RadicalIDs = resolveRefs(resolve, row.Radicals, models.TypeRadical, report)
			typed.VocabularyIDs = resolveRefs(resolve, row.Vocabulary, models.TypeVocabulary, report)
		case *models.Vocabulary:
			typed.KanjiIDs = resolveRefs(resolve, row.Kanji, models.TypeKanji, report)
		}
	}

	if err := r.saveDecks(ctx, decks); err != nil {
		return nil, err
	}
	return report, nil
}

func resolveRefs(resolve models.Resolver, characters []string, typ models.ItemType, report *ImportReport) []int64 {
	var ids []int64
	for _, chars := range characters {
		id, ok := resolve(chars, typ)
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("dropped reference to unknown %s %q", typ, chars))
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func itemFromExport(row models.ExportItem, id int64) (models.Item, error) {
	if len(row.English) == 0 {
		return nil, fmt.Errorf("row needs at least one meaning")
	}

	switch row.Type {
	case models.TypeRadical:
		radical := models.NewRadical(id, row.Characters, row.English, row.Level)
		radical.MeaningMnemonic = row.MeaningMnemonic
		radical.Relationships = row.Relationships
		radical.AuxiliaryMeanings = row.AuxiliaryMeanings
		return radical, nil

	case models.TypeKanji:
		kanji := models.NewKanji(id, row.Characters, row.English, row.Level)
		kanji.Onyomi = row.Onyomi
		kanji.Kunyomi = row.Kunyomi
		kanji.Nanori = row.Nanori
		kanji.Emphasis = row.Emphasis
		kanji.MeaningMnemonic = row.MeaningMnemonic
		kanji.ReadingMnemonic = row.ReadingMnemonic
		kanji.Relationships = row.Relationships
		kanji.AuxiliaryMeanings = row.AuxiliaryMeanings
		kanji.AuxiliaryReadings = row.AuxiliaryReadings
		return kanji, nil

	case models.TypeVocabulary:
		vocabulary := models.NewVocabulary(id, row.Characters, row.English, row.Kana, row.Level)
		vocabulary.MeaningMnemonic = row.MeaningMnemonic
		vocabulary.ReadingMnemonic = row.ReadingMnemonic
		vocabulary.SentencePairs = row.SentencePairs
		vocabulary.PartsOfSpeech = row.PartsOfSpeech
		vocabulary.Relationships = row.Relationships
		vocabulary.AuxiliaryMeanings = row.AuxiliaryMeanings
		vocabulary.AuxiliaryReadings = row.AuxiliaryReadings
		return vocabulary, nil

	default:
		return nil, fmt.Errorf("unknown item type %q", row.Type)
	}
}
