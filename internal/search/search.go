// Package search filters, highlights and sorts catalog snapshots for the
// public listing page. It never mutates the snapshot it is given.
package search

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"hondana/internal/catalog"
	"hondana/internal/models"
)

// Mode selects the per-owner ordering of results.
type Mode string

const (
	ModeNew       Mode = "new"
	ModePriceAsc  Mode = "price_asc"
	ModePriceDesc Mode = "price_desc"
)

// ParseMode maps a query parameter onto a Mode, defaulting to newest-first.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModePriceAsc, ModePriceDesc:
		return Mode(s)
	default:
		return ModeNew
	}
}

// Item is one matching listing with every string field highlighted. The
// marked strings are raw; callers sanitize before rendering. Key is the
// unhighlighted title, usable for detail links.
type Item struct {
	Key       string
	Title     string
	Author    string
	Price     string
	Condition string
	Note      string
	Course    string
	CreatedAt string
	Images    []string
}

// OwnerGroup is one owner's matching listings, already sorted. Sorting is
// applied within each owner only; groups themselves are in owner-name order.
type OwnerGroup struct {
	Owner string
	Items []Item
}

// Query filters the snapshot by keyword, highlights the matches and sorts
// each owner's result set by mode. Owners with no matching listing are
// omitted entirely.
func Query(snap catalog.Snapshot, keyword string, mode Mode) []OwnerGroup {
	owners := make([]string, 0, len(snap))
	for owner := range snap {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	groups := make([]OwnerGroup, 0, len(owners))
	for _, owner := range owners {
		listings := matchShelf(snap[owner], keyword)
		if len(listings) == 0 {
			continue
		}
		sortListings(listings, mode)
		g := OwnerGroup{Owner: owner, Items: make([]Item, 0, len(listings))}
		for _, l := range listings {
			g.Items = append(g.Items, highlightListing(l, keyword))
		}
		groups = append(groups, g)
	}
	return groups
}

// matchShelf returns one owner's matching listings in title order, which is
// the base order the stable sort preserves for ties.
func matchShelf(shelf map[string]*models.Listing, keyword string) []*models.Listing {
	titles := make([]string, 0, len(shelf))
	for title := range shelf {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	matched := make([]*models.Listing, 0, len(titles))
	for _, title := range titles {
		if Matches(shelf[title], keyword) {
			matched = append(matched, shelf[title])
		}
	}
	return matched
}

// Matches reports whether the keyword occurs, case-insensitively, in the
// space-joined searchable fields. The empty keyword matches everything.
func Matches(l *models.Listing, keyword string) bool {
	if keyword == "" {
		return true
	}
	combined := strings.Join([]string{l.Title, l.Author, l.Note, l.Condition, l.Course}, " ")
	return strings.Contains(strings.ToLower(combined), strings.ToLower(keyword))
}

// Highlight wraps each case-insensitive occurrence of keyword in
// <mark>…</mark>, keeping the original casing and every other character
// verbatim. Empty keyword returns the text unchanged.
func Highlight(text, keyword string) string {
	if keyword == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(keyword) + `)`)
	return re.ReplaceAllString(text, "<mark>${1}</mark>")
}

func highlightListing(l *models.Listing, keyword string) Item {
	return Item{
		Key:       l.Title,
		Title:     Highlight(l.Title, keyword),
		Author:    Highlight(l.Author, keyword),
		Price:     Highlight(l.Price, keyword),
		Condition: Highlight(l.Condition, keyword),
		Note:      Highlight(l.Note, keyword),
		Course:    Highlight(l.Course, keyword),
		CreatedAt: Highlight(l.CreatedAt, keyword),
		Images:    l.Images,
	}
}

var digitRun = regexp.MustCompile(`\d+`)

// ParsePrice pulls the first contiguous digit run out of a free-text price,
// ignoring thousands separators: "1,500円" -> 1500. ok is false when the
// text carries no digits at all.
func ParsePrice(price string) (n int, ok bool) {
	m := digitRun.FindString(strings.ReplaceAll(price, ",", ""))
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// sortListings orders one owner's listings in place. Unknown prices sort
// after all known prices in both price modes; ties keep their base order.
func sortListings(listings []*models.Listing, mode Mode) {
	switch mode {
	case ModePriceAsc, ModePriceDesc:
		sort.SliceStable(listings, func(a, b int) bool {
			pa, oka := ParsePrice(listings[a].Price)
			pb, okb := ParsePrice(listings[b].Price)
			if oka != okb {
				return oka // known prices before unknown
			}
			if !oka {
				return false
			}
			if mode == ModePriceAsc {
				return pa < pb
			}
			return pa > pb
		})
	default: // newest first; missing timestamps sort as empty (earliest)
		sort.SliceStable(listings, func(a, b int) bool {
			return listings[a].CreatedAt > listings[b].CreatedAt
		})
	}
}
