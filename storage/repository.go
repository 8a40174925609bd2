package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gorbit99/wics-extension-sub000/models"
)

// All decks live under a single key, read and written whole. Two
// concurrent writers can lose an update; acceptable for a single-user
// local system and deliberately not hidden behind finer locking.
const decksKey = "customDecks"

var (
	ErrDeckExists   = errors.New("a deck with that name already exists")
	ErrDeckNotFound = errors.New("deck not found")
	ErrItemNotFound = errors.New("item not found")
	ErrInvalidItem  = errors.New("item failed validation")
	ErrNameRequired = errors.New("deck name is required")
)

// CatalogResolver answers character/id questions against the remote
// subject catalog. Implemented over the subject cache; nil disables
// catalog resolution (local decks still resolve).
type CatalogResolver interface {
	ResolveCharacters(ctx context.Context, characters string, typ models.ItemType) (int64, bool)
	CharactersByID(ctx context.Context, id int64) (string, models.ItemType, bool)
}

// DeckRepository owns the persisted deck collection: CRUD, id
// allocation, cross-deck lookup and the queue-facing aggregate queries.
type DeckRepository struct {
	store   Store
	catalog CatalogResolver
	now     func() time.Time
}

func NewDeckRepository(store Store, catalog CatalogResolver) *DeckRepository {
	return &DeckRepository{
		store:   store,
		catalog: catalog,
		now:     time.Now,
	}
}

func (r *DeckRepository) loadDecks(ctx context.Context) ([]*models.Deck, error) {
	values, err := r.store.Get(ctx, decksKey)
	if err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	raw, ok := values[decksKey]
	if !ok {
		return nil, nil
	}

	var decks []*models.Deck
	if err := json.Unmarshal(raw, &decks); err != nil {
		return nil, fmt.Errorf("load decks: %w", err)
	}
	return decks, nil
}

func (r *DeckRepository) saveDecks(ctx context.Context, decks []*models.Deck) error {
	raw, err := json.Marshal(decks)
	if err != nil {
		return fmt.Errorf("save decks: %w", err)
	}
	if err := r.store.Set(ctx, map[string]json.RawMessage{decksKey: raw}); err != nil {
		return fmt.Errorf("save decks: %w", err)
	}
	return nil
}

// GetAllDecks returns every stored deck.
func (r *DeckRepository) GetAllDecks(ctx context.Context) ([]*models.Deck, error) {
	return r.loadDecks(ctx)
}

// AddDeck stores a new deck, assigning an opaque DeckID when the deck
// does not carry one. Fails with ErrDeckExists on a name collision.
func (r *DeckRepository) AddDeck(ctx context.Context, deck *models.Deck) error {
	if deck.Name == "" {
		return ErrNameRequired
	}

	decks, err := r.loadDecks(ctx)
	if err != nil {
		return err
	}
	for _, existing := range decks {
		if existing.Name == deck.Name {
			return ErrDeckExists
		}
	}

	if deck.DeckID == "" {
		deckID, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("generate deck id: %w", err)
		}
		deck.DeckID = deckID
	}
	deck.LastUpdated = r.now()

	return r.saveDecks(ctx, append(decks, deck))
}

// UpdateDeck replaces the deck stored under originalName. Renames are
// checked against the other decks' names.
func (r *DeckRepository) UpdateDeck(ctx context.Context, originalName string, deck *models.Deck) error {
	if deck.Name == "" {
		return ErrNameRequired
	}

	decks, err := r.loadDecks(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i, existing := range decks {
		if existing.Name == originalName {
			index = i
		} else if existing.Name == deck.Name {
			return ErrDeckExists
		}
	}
	if index == -1 {
		return ErrDeckNotFound
	}

	if deck.DeckID == "" {
		deck.DeckID = decks[index].DeckID
	}
	deck.LastUpdated = r.now()
	decks[index] = deck

	return r.saveDecks(ctx, decks)
}

// DeleteDeck removes a deck and all of its items.
func (r *DeckRepository) DeleteDeck(ctx context.Context, name string) error {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return err
	}

	kept := decks[:0]
	for _, deck := range decks {
		if deck.Name != name {
			kept = append(kept, deck)
		}
	}
	if len(kept) == len(decks) {
		return ErrDeckNotFound
	}

	return r.saveDecks(ctx, kept)
}

// GetDeckByName finds a deck by its unique name.
func (r *DeckRepository) GetDeckByName(ctx context.Context, name string) (*models.Deck, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, deck := range decks {
		if deck.Name == name {
			return deck, nil
		}
	}
	return nil, ErrDeckNotFound
}

// GetDeckByDeckID finds a deck by its opaque id, used to recognise a
// re-import of a previously imported deck.
func (r *DeckRepository) GetDeckByDeckID(ctx context.Context, deckID string) (*models.Deck, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}
	for _, deck := range decks {
		if deck.DeckID != "" && deck.DeckID == deckID {
			return deck, nil
		}
	}
	return nil, ErrDeckNotFound
}

// NextID returns the next free custom item id: one below the lowest id
// currently in use, -1 when no items exist. The allocator looks only at
// live items, so an id freed by deletion can be reissued.
func (r *DeckRepository) NextID(ctx context.Context) (int64, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return 0, err
	}
	return nextID(decks), nil
}

func nextID(decks []*models.Deck) int64 {
	next := int64(-1)
	for _, deck := range decks {
		for _, item := range deck.Items {
			if id := item.Base().ID - 1; id < next {
				next = id
			}
		}
	}
	return next
}

// GetItemsFromIDs is a best-effort lookup across all decks; ids that
// resolve to nothing are dropped.
func (r *DeckRepository) GetItemsFromIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}

	var items []models.Item
	for _, id := range ids {
		if item, _, ok := findItem(decks, id); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func findItem(decks []*models.Deck, id int64) (models.Item, *models.Deck, bool) {
	for _, deck := range decks {
		if item, ok := deck.ItemByID(id); ok {
			return item, deck, true
		}
	}
	return nil, nil, false
}

// GetPendingReviewIDs returns the ids of every item across all decks
// that is in the review pipeline and due, under the given level gate.
func (r *DeckRepository) GetPendingReviewIDs(ctx context.Context, gate int) ([]int64, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	var ids []int64
	for _, deck := range decks {
		for _, item := range deck.Items {
			if item.Base().IsPendingReview(gate, now) {
				ids = append(ids, item.Base().ID)
			}
		}
	}
	return ids, nil
}

// GetPendingLessons returns the lesson projection of every unlearned
// item across all decks, under the given level gate.
func (r *DeckRepository) GetPendingLessons(ctx context.Context, gate int) ([]models.LessonPayload, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}

	var lessons []models.LessonPayload
	for _, deck := range decks {
		for _, item := range deck.Items {
			if item.Base().SRS.IsLesson(gate) {
				lessons = append(lessons, item.LessonPayload())
			}
		}
	}
	return lessons, nil
}

// HandleLessonCompletion records finished lessons. Ids that belong to no
// deck are the host site's own items and are skipped without error.
func (r *DeckRepository) HandleLessonCompletion(ctx context.Context, ids []int64) error {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	touched := false
	for _, id := range ids {
		item, deck, ok := findItem(decks, id)
		if !ok {
			continue
		}
		item.Base().CompleteLesson(now)
		deck.LastUpdated = now
		touched = true
	}

	if !touched {
		return nil
	}
	return r.saveDecks(ctx, decks)
}

// ReviewOutcome is the host page's per-item answer tally.
type ReviewOutcome struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// HandleProgressMade applies review outcomes. The mistake count fed into
// the stage machine is correct+incorrect, matching the outcome feed's
// established semantics. Unknown ids belong to the host site and are
// skipped without error.
func (r *DeckRepository) HandleProgressMade(ctx context.Context, outcomes map[int64]ReviewOutcome) error {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return err
	}

	now := r.now()
	touched := false
	for id, outcome := range outcomes {
		item, deck, ok := findItem(decks, id)
		if !ok {
			continue
		}
		item.Base().Review(outcome.Correct+outcome.Incorrect, now)
		deck.LastUpdated = now
		touched = true
	}

	if !touched {
		return nil
	}
	return r.saveDecks(ctx, decks)
}

// CreateItem assigns a fresh negative id and appends the item to the
// named deck.
func (r *DeckRepository) CreateItem(ctx context.Context, deckName string, item models.Item) (models.Item, error) {
	if err := item.Base().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}
	deck := deckByName(decks, deckName)
	if deck == nil {
		return nil, ErrDeckNotFound
	}

	item.Base().ID = nextID(decks)
	deck.AddItem(item)
	deck.LastUpdated = r.now()

	if err := r.saveDecks(ctx, decks); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemFields applies a partial field patch to an item, resolving
// character references through local decks and the catalog. Returns the
// updated item plus a warning per unresolvable reference. A patch that
// would leave the item invalid fails with ErrInvalidItem and nothing is
// persisted.
func (r *DeckRepository) UpdateItemFields(ctx context.Context, deckName string, id int64, patch map[string]any) (models.Item, []string, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, nil, err
	}
	deck := deckByName(decks, deckName)
	if deck == nil {
		return nil, nil, ErrDeckNotFound
	}
	item, ok := deck.ItemByID(id)
	if !ok {
		return nil, nil, ErrItemNotFound
	}

	warnings := item.ApplyPatch(patch, r.resolverOver(ctx, decks))
	if err := item.Base().Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	deck.LastUpdated = r.now()

	if err := r.saveDecks(ctx, decks); err != nil {
		return nil, nil, err
	}
	return item, warnings, nil
}

// SetItemValue writes a single keyed field on an item. Unknown fields
// fail with models.ErrUnknownField, and a write that would leave the
// item invalid fails with ErrInvalidItem; nothing is persisted in
// either case.
func (r *DeckRepository) SetItemValue(ctx context.Context, deckName string, id int64, field string, value any) (models.Item, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return nil, err
	}
	deck := deckByName(decks, deckName)
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	item, ok := deck.ItemByID(id)
	if !ok {
		return nil, ErrItemNotFound
	}

	if err := item.SetValue(field, value); err != nil {
		return nil, err
	}
	if err := item.Base().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	deck.LastUpdated = r.now()

	if err := r.saveDecks(ctx, decks); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item from the named deck. The freed id may be
// reissued later.
func (r *DeckRepository) DeleteItem(ctx context.Context, deckName string, id int64) error {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return err
	}
	deck := deckByName(decks, deckName)
	if deck == nil {
		return ErrDeckNotFound
	}
	if !deck.RemoveItem(id) {
		return ErrItemNotFound
	}
	deck.LastUpdated = r.now()

	return r.saveDecks(ctx, decks)
}

// ResolveCharacters maps glyphs of a type to an id, consulting local
// decks first and the remote catalog second.
func (r *DeckRepository) ResolveCharacters(ctx context.Context, characters string, typ models.ItemType) (int64, bool) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return 0, false
	}
	return r.resolverOver(ctx, decks)(characters, typ)
}

func (r *DeckRepository) resolverOver(ctx context.Context, decks []*models.Deck) models.Resolver {
	return func(characters string, typ models.ItemType) (int64, bool) {
		for _, deck := range decks {
			if item, ok := deck.ItemByCharacters(characters, typ); ok {
				return item.Base().ID, true
			}
		}
		if r.catalog != nil {
			return r.catalog.ResolveCharacters(ctx, characters, typ)
		}
		return 0, false
	}
}

func (r *DeckRepository) lookupOver(ctx context.Context, decks []*models.Deck) models.CharacterLookup {
	return func(id int64, typ models.ItemType) (string, bool) {
		for _, deck := range decks {
			if item, ok := deck.ItemByID(id); ok {
				if item.Base().Type != typ {
					return "", false
				}
				return item.Base().Characters, true
			}
		}
		if r.catalog != nil {
			characters, subjectType, ok := r.catalog.CharactersByID(ctx, id)
			if ok && subjectType == typ {
				return characters, true
			}
		}
		return "", false
	}
}

// ExportDeck produces the portable form of a deck, with cross-references
// serialized as glyphs.
func (r *DeckRepository) ExportDeck(ctx context.Context, name string) (models.DeckExport, error) {
	decks, err := r.loadDecks(ctx)
	if err != nil {
		return models.DeckExport{}, err
	}
	deck := deckByName(decks, name)
	if deck == nil {
		return models.DeckExport{}, ErrDeckNotFound
	}
	return deck.Export(r.lookupOver(ctx, decks)), nil
}

func deckByName(decks []*models.Deck, name string) *models.Deck {
	for _, deck := range decks {
		if deck.Name == name {
			return deck
		}
	}
	return nil
}
