// Package catalog adapts the cached remote subject collection to the
// character/id resolution questions the deck repository asks.
package catalog

import (
	"context"

	"github.com/gorbit99/wics-extension-sub000/cache"
	"github.com/gorbit99/wics-extension-sub000/models"
)

// SubjectCatalog resolves characters and ids against the subject cache.
// Misses are soft: a cold or failing cache answers "not found" rather
// than surfacing an error, since catalog resolution is best-effort.
type SubjectCatalog struct {
	subjects *cache.Collection[models.Subject]
}

func NewSubjectCatalog(subjects *cache.Collection[models.Subject]) *SubjectCatalog {
	return &SubjectCatalog{subjects: subjects}
}

// ResolveCharacters finds the live catalog subject with the given glyphs
// and type.
func (c *SubjectCatalog) ResolveCharacters(ctx context.Context, characters string, typ models.ItemType) (int64, bool) {
	subjects, err := c.subjects.FetchItems(ctx, nil)
	if err != nil {
		return 0, false
	}
	for _, subject := range subjects {
		if subject.Matches(characters, typ) {
			return subject.ID, true
		}
	}
	return 0, false
}

// CharactersByID returns the glyphs and type of a catalog subject.
func (c *SubjectCatalog) CharactersByID(ctx context.Context, id int64) (string, models.ItemType, bool) {
	if id < 0 {
		return "", "", false
	}
	subjects, err := c.subjects.FetchItems(ctx, []int64{id})
	if err != nil || len(subjects) == 0 {
		return "", "", false
	}

	subject := subjects[0]
	typ, ok := subject.ItemType()
	if !ok {
		return "", "", false
	}
	return subject.Data.Characters, typ, true
}
