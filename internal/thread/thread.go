// Package thread stores per-listing comment threads and derives unread
// notifications from each comment's read-by set. Read state is tracked per
// comment, not per thread, so a user who partially reads a growing thread
// still sees exactly the new comments as unread.
package thread

import (
	"errors"
	"sort"
	"strings"
	"time"

	"hondana/internal/models"
	"hondana/internal/store"
)

// ErrEmptyBody rejects comments that are blank after trimming.
var ErrEmptyBody = errors.New("empty comment body")

// Notification is one unread comment surfaced to a listing owner.
type Notification struct {
	Title     string // listing title
	Author    string // who commented
	Text      string
	Time      string
	ThreadKey string
}

// Engine reads and writes the comments collection. Threads are created
// lazily on first comment and deleted when their listing goes away.
type Engine struct {
	store store.Store
}

func New(st store.Store) *Engine {
	return &Engine{store: st}
}

var timeNow = time.Now

const timeLayout = "2006-01-02 15:04:05"

type snapshot map[string][]*models.Comment

func (e *Engine) load() (snapshot, error) {
	data := snapshot{}
	if err := e.store.Load(store.Comments, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// sortedKeys gives a deterministic thread iteration order; comments within
// a thread stay in insertion order.
func (s snapshot) sortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Post appends a comment with an empty read-by set, creating the thread if
// it does not exist yet.
func (e *Engine) Post(owner, title, author, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyBody
	}
	data, err := e.load()
	if err != nil {
		return err
	}
	key := models.ThreadKey(owner, title)
	data[key] = append(data[key], &models.Comment{
		Author: author,
		Text:   text,
		Time:   timeNow().Format(timeLayout),
		ReadBy: []string{},
	})
	return e.store.Save(store.Comments, data)
}

// Comments returns one thread in insertion order, nil when no thread exists.
func (e *Engine) Comments(owner, title string) ([]*models.Comment, error) {
	data, err := e.load()
	if err != nil {
		return nil, err
	}
	return data[models.ThreadKey(owner, title)], nil
}

// ListUnread collects every comment, in threads owned by user, that user
// has not read yet. Comment authors are not excluded: the predicate is
// ownership of the thread plus absence from the read-by set.
func (e *Engine) ListUnread(user string) ([]Notification, error) {
	data, err := e.load()
	if err != nil {
		return nil, err
	}
	var notes []Notification
	for _, key := range data.sortedKeys() {
		owner, title, ok := models.SplitThreadKey(key)
		if !ok || owner != user {
			continue
		}
		for _, c := range data[key] {
			if c.IsReadBy(user) {
				continue
			}
			notes = append(notes, Notification{
				Title:     title,
				Author:    c.Author,
				Text:      c.Text,
				Time:      c.Time,
				ThreadKey: key,
			})
		}
	}
	return notes, nil
}

// UnreadCount is ListUnread's predicate, count only. Backs the badge shown
// on every page.
func (e *Engine) UnreadCount(user string) (int, error) {
	notes, err := e.ListUnread(user)
	if err != nil {
		return 0, err
	}
	return len(notes), nil
}

// MarkRead adds user to the read-by set of every comment in the thread.
// Idempotent; the snapshot is written back only when something changed.
func (e *Engine) MarkRead(owner, title, user string) error {
	data, err := e.load()
	if err != nil {
		return err
	}
	changed := false
	for _, c := range data[models.ThreadKey(owner, title)] {
		if c.AddReader(user) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return e.store.Save(store.Comments, data)
}

// DeleteThread drops the whole thread. Called when the listing is deleted;
// a later Post starts a fresh empty thread. No-op when absent.
func (e *Engine) DeleteThread(owner, title string) error {
	data, err := e.load()
	if err != nil {
		return err
	}
	key := models.ThreadKey(owner, title)
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return e.store.Save(store.Comments, data)
}
