// Package catalog implements the client-side song browsing pipeline.
//
// A [View] holds the fully fetched catalog plus the browsing state (text
// query, genre filter, sort key, page). The visible page is a pure function of
// that state: filter by query across title/artist/genre/album, filter by genre
// equality, sort by the chosen key, then slice. Nothing here touches the
// network; the catalog is fetched once and filtered locally.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/justmusik/jmk/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is the fixed page size for catalog views.
const DefaultPageSize = 10

// SortKey selects the song field the catalog is ordered by.
type SortKey string

const (
	SortNone   SortKey = ""
	SortTitle  SortKey = "title"
	SortArtist SortKey = "artist"
	SortGenre  SortKey = "genre"
)

// sortCycle is the order the TUI steps through with the sort key binding.
var sortCycle = []SortKey{SortNone, SortTitle, SortArtist, SortGenre}

// ParseSortKey converts user input into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortNone:
		return SortNone, nil
	case SortTitle:
		return SortTitle, nil
	case SortArtist:
		return SortArtist, nil
	case SortGenre:
		return SortGenre, nil
	default:
		return SortNone, fmt.Errorf("unknown sort key %q (want title, artist, or genre)", s)
	}
}

// Next returns the sort key following k in the TUI's cycle.
func (k SortKey) Next() SortKey {
	for i, key := range sortCycle {
		if key == k {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return SortNone
}

// View is the catalog browsing state. The zero value is not usable; construct
// with [NewView].
type View struct {
	songs    []models.Song
	query    string
	genre    string
	sortKey  SortKey
	page     int
	pageSize int
	coll     *collate.Collator
}

// NewView creates an empty catalog view with the given page size.
func NewView(pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{
		page:     1,
		pageSize: pageSize,
		coll:     collate.New(language.Und, collate.IgnoreCase),
	}
}

// SetSongs replaces the backing catalog and returns to the first page. The
// slice order is the fetch order, which breaks sorting ties.
func (v *View) SetSongs(songs []models.Song) {
	v.songs = songs
	v.page = 1
}

// SetQuery applies a text filter and resets to the first page.
func (v *View) SetQuery(q string) {
	v.query = q
	v.page = 1
}

// SetGenre applies a genre equality filter and resets to the first page. An
// empty genre clears the filter.
func (v *View) SetGenre(g string) {
	v.genre = g
	v.page = 1
}

// SetSort changes the sort key. Sorting reorders the same filtered list, so
// the current page is kept.
func (v *View) SetSort(k SortKey) {
	v.sortKey = k
}

// SetPage moves to page n, clamped into [1, TotalPages].
func (v *View) SetPage(n int) {
	v.page = v.clamp(n)
}

// NextPage advances one page, clamped.
func (v *View) NextPage() { v.SetPage(v.page + 1) }

// PrevPage goes back one page, clamped.
func (v *View) PrevPage() { v.SetPage(v.page - 1) }

// Query returns the active text filter.
func (v *View) Query() string { return v.query }

// Genre returns the active genre filter, empty when unset.
func (v *View) Genre() string { return v.genre }

// Sort returns the active sort key.
func (v *View) Sort() SortKey { return v.sortKey }

// Page returns the current page, clamped into the valid range.
func (v *View) Page() int { return v.clamp(v.page) }

// PageSize returns the fixed page size.
func (v *View) PageSize() int { return v.pageSize }

// Len returns the size of the backing catalog before filtering.
func (v *View) Len() int { return len(v.songs) }

// Songs returns the full backing catalog in fetch order.
func (v *View) Songs() []models.Song { return v.songs }

// TotalPages returns the page count of the filtered list. An empty list still
// has one (empty) page, so the clamp range [1, TotalPages] is always valid.
func (v *View) TotalPages() int {
	n := len(v.Filtered())
	if n == 0 {
		return 1
	}
	return (n + v.pageSize - 1) / v.pageSize
}

// Filtered returns the catalog after query and genre filtering and sorting,
// before pagination.
func (v *View) Filtered() []models.Song {
	out := make([]models.Song, 0, len(v.songs))
	for _, song := range v.songs {
		if v.genre != "" && song.Genre != v.genre {
			continue
		}
		if v.query != "" && !matches(song, v.query) {
			continue
		}
		out = append(out, song)
	}

	v.sort(out)
	return out
}

// Visible returns the current page of the filtered, sorted catalog.
func (v *View) Visible() []models.Song {
	filtered := v.Filtered()
	page := v.clamp(v.page)

	start := (page - 1) * v.pageSize
	if start >= len(filtered) {
		return nil
	}
	end := min(start+v.pageSize, len(filtered))
	return filtered[start:end]
}

// Genres returns the distinct non-empty genre values present in the catalog,
// in collation order for stable display.
func (v *View) Genres() []string {
	seen := make(map[string]bool, len(v.songs))
	var genres []string
	for _, song := range v.songs {
		if song.Genre != "" && !seen[song.Genre] {
			seen[song.Genre] = true
			genres = append(genres, song.Genre)
		}
	}
	v.coll.SortStrings(genres)
	return genres
}

func (v *View) clamp(page int) int {
	total := v.TotalPages()
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// sort orders songs by the active key in place. The sort is stable: equal keys
// keep the original fetch order.
func (v *View) sort(songs []models.Song) {
	if v.sortKey == SortNone {
		return
	}

	key := func(s models.Song) string {
		switch v.sortKey {
		case SortArtist:
			return s.Artist
		case SortGenre:
			return s.Genre
		default:
			return s.Title
		}
	}

	sort.SliceStable(songs, func(i, j int) bool {
		return v.coll.CompareString(key(songs[i]), key(songs[j])) < 0
	})
}

// matches reports whether the query appears, case-insensitively, in any of the
// song's title, artist, genre, or album.
func matches(song models.Song, query string) bool {
	q := strings.ToLower(query)
	for _, field := range []string{song.Title, song.Artist, song.Genre, song.Album} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
