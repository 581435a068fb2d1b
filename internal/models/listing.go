package models

// MaxImages is the hard cap on image references per listing.
const MaxImages = 5

// Listing is one textbook-for-sale record. Listings are keyed by
// (owner, title): the title is unique within one owner's shelf only.
type Listing struct {
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Price     string   `json:"price"` // free text, e.g. "1500円"
	Condition string   `json:"condition"`
	Note      string   `json:"note"`
	Course    string   `json:"course"`
	Images    []string `json:"images"`
	CreatedAt string   `json:"created_at"`
}

// HasImage reports whether ref is currently attached to the listing.
func (l *Listing) HasImage(ref string) bool {
	for _, r := range l.Images {
		if r == ref {
			return true
		}
	}
	return false
}
