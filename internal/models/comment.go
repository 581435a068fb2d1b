package models

import "strings"

// ThreadKeySep joins the owner and title of a listing into a thread key.
// It is reserved: usernames and titles containing it are rejected at the
// input edge so SplitThreadKey is always unambiguous.
const ThreadKeySep = "::"

// Comment is one entry in a listing's discussion thread. The record itself
// is immutable once posted; only ReadBy grows.
type Comment struct {
	Author string   `json:"author"`
	Text   string   `json:"text"`
	Time   string   `json:"time"`
	ReadBy []string `json:"read_by"`
}

// IsReadBy reports whether user is in the comment's read-by set.
func (c *Comment) IsReadBy(user string) bool {
	for _, u := range c.ReadBy {
		if u == user {
			return true
		}
	}
	return false
}

// AddReader puts user into the read-by set. The set only grows; adding an
// existing member is a no-op. Reports whether the comment changed.
func (c *Comment) AddReader(user string) bool {
	if c.IsReadBy(user) {
		return false
	}
	c.ReadBy = append(c.ReadBy, user)
	return true
}

// ThreadKey builds the comment-thread key for a listing.
func ThreadKey(owner, title string) string {
	return owner + ThreadKeySep + title
}

// SplitThreadKey is the inverse of ThreadKey. ok is false for keys that
// carry no separator (malformed by construction).
func SplitThreadKey(key string) (owner, title string, ok bool) {
	owner, title, ok = strings.Cut(key, ThreadKeySep)
	return
}
