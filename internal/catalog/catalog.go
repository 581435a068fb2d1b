// Package catalog owns the listing records: create-if-absent, image slot
// accounting and deletion with blob-ref handback for the physical cleanup.
package catalog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"hondana/internal/models"
	"hondana/internal/store"
)

var (
	// ErrCapacityExceeded means the listing already holds the maximum
	// number of images. User-recoverable.
	ErrCapacityExceeded = errors.New("image slots full")
	// ErrReservedTitle rejects titles containing the thread-key separator.
	ErrReservedTitle = errors.New("title contains reserved characters")
)

// Fields are the free-text attributes supplied at creation. They are fixed
// once the listing exists; repeat Put calls do not update them.
type Fields struct {
	Author    string
	Price     string
	Condition string
	Note      string
	Course    string
}

// Snapshot is the whole listings collection: owner -> title -> listing.
type Snapshot map[string]map[string]*models.Listing

// Catalog reads and writes the listings collection through the snapshot
// store. Every mutation is a full read-modify-write cycle.
type Catalog struct {
	store store.Store
}

func New(st store.Store) *Catalog {
	return &Catalog{store: st}
}

// stubbed in tests for deterministic timestamps
var timeNow = time.Now

// Fixed-width so newest-first ordering can compare timestamps as strings.
const timeLayout = "2006-01-02T15:04:05.000000"

func (c *Catalog) load() (Snapshot, error) {
	data := Snapshot{}
	if err := c.store.Load(store.Listings, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Snapshot returns the full catalog for read-only consumers (the search
// engine, the public pages).
func (c *Catalog) Snapshot() (Snapshot, error) {
	return c.load()
}

// Get looks up one listing.
func (c *Catalog) Get(owner, title string) (*models.Listing, bool, error) {
	data, err := c.load()
	if err != nil {
		return nil, false, err
	}
	l, ok := data[owner][title]
	return l, ok, nil
}

// ByOwner returns one owner's listings in creation order.
func (c *Catalog) ByOwner(owner string) ([]*models.Listing, error) {
	data, err := c.load()
	if err != nil {
		return nil, err
	}
	listings := make([]*models.Listing, 0, len(data[owner]))
	for _, l := range data[owner] {
		listings = append(listings, l)
	}
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].CreatedAt != listings[j].CreatedAt {
			return listings[i].CreatedAt < listings[j].CreatedAt
		}
		return listings[i].Title < listings[j].Title
	})
	return listings, nil
}

// Put creates the listing when (owner, title) is absent and returns it.
// When it already exists the stored record is returned unchanged: this is
// create-if-absent, not an upsert.
func (c *Catalog) Put(owner, title string, f Fields) (*models.Listing, error) {
	if strings.Contains(title, models.ThreadKeySep) {
		return nil, ErrReservedTitle
	}
	data, err := c.load()
	if err != nil {
		return nil, err
	}
	shelf := data[owner]
	if shelf == nil {
		shelf = map[string]*models.Listing{}
		data[owner] = shelf
	}
	if existing, ok := shelf[title]; ok {
		return existing, nil
	}
	l := &models.Listing{
		Title:     title,
		Author:    f.Author,
		Price:     f.Price,
		Condition: f.Condition,
		Note:      f.Note,
		Course:    f.Course,
		Images:    []string{},
		CreatedAt: timeNow().Format(timeLayout),
	}
	shelf[title] = l
	if err := c.store.Save(store.Listings, data); err != nil {
		return nil, err
	}
	return l, nil
}

// AttachImages appends blob references in input order until the listing
// holds models.MaxImages; overflow is silently dropped. Returns the refs
// actually accepted. A listing already at capacity reports
// ErrCapacityExceeded; an absent listing is a silent no-op.
func (c *Catalog) AttachImages(owner, title string, refs []string) ([]string, error) {
	data, err := c.load()
	if err != nil {
		return nil, err
	}
	l, ok := data[owner][title]
	if !ok {
		return nil, nil
	}
	remaining := models.MaxImages - len(l.Images)
	if remaining <= 0 {
		return nil, ErrCapacityExceeded
	}
	if len(refs) > remaining {
		refs = refs[:remaining]
	}
	if len(refs) == 0 {
		return nil, nil
	}
	l.Images = append(l.Images, refs...)
	if err := c.store.Save(store.Listings, data); err != nil {
		return nil, err
	}
	return refs, nil
}

// Delete removes the listing and hands back the blob refs it held so the
// caller can delete the files and cascade the comment thread. Absent
// listings are a no-op, not an error.
func (c *Catalog) Delete(owner, title string) ([]string, error) {
	data, err := c.load()
	if err != nil {
		return nil, err
	}
	l, ok := data[owner][title]
	if !ok {
		return nil, nil
	}
	refs := l.Images
	delete(data[owner], title)
	if len(data[owner]) == 0 {
		delete(data, owner)
	}
	if err := c.store.Save(store.Listings, data); err != nil {
		return nil, err
	}
	return refs, nil
}

// DeleteImage removes one blob reference from the listing. Reports whether
// the ref was attached, so the caller knows to delete the file; absent
// listing or ref is a no-op.
func (c *Catalog) DeleteImage(owner, title, ref string) (bool, error) {
	data, err := c.load()
	if err != nil {
		return false, err
	}
	l, ok := data[owner][title]
	if !ok || !l.HasImage(ref) {
		return false, nil
	}
	kept := l.Images[:0]
	for _, r := range l.Images {
		if r != ref {
			kept = append(kept, r)
		}
	}
	l.Images = kept
	if err := c.store.Save(store.Listings, data); err != nil {
		return false, err
	}
	return true, nil
}
