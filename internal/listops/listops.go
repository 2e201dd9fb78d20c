// Package listops applies the list modifiers (filtering, sorting, paging)
// to candidate entity sets. Modifiers compose in exactly that order: a page
// window is always cut from the sorted, filtered sequence.
package listops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hanpama/snapgraph/internal/entity"
)

// MatchPhoto reports whether the photo passes every present predicate of the
// filter. Predicates are conjunctive: adding one can only shrink the result.
func MatchPhoto(filter *entity.PhotoFilter, photo *entity.Photo) bool {
	if filter == nil {
		return true
	}
	if filter.Category != nil && photo.Category != *filter.Category {
		return false
	}
	if filter.CreatedBetween != nil && !filter.CreatedBetween.Contains(photo.Created) {
		return false
	}
	if len(filter.TaggedUsers) > 0 && !anyTagged(filter.TaggedUsers, photo.TaggedLogins) {
		return false
	}
	if filter.SearchText != nil && !containsFold(photo, *filter.SearchText) {
		return false
	}
	return true
}

// anyTagged reports whether at least one of the wanted logins is tagged.
func anyTagged(wanted, tagged []string) bool {
	for _, w := range wanted {
		for _, t := range tagged {
			if w == t {
				return true
			}
		}
	}
	return false
}

func containsFold(photo *entity.Photo, needle string) bool {
	n := strings.ToLower(needle)
	return strings.Contains(strings.ToLower(photo.Name), n) ||
		strings.Contains(strings.ToLower(photo.Description), n)
}

// FilterPhotos keeps the photos matching the filter, preserving input order.
// The result is never nil.
func FilterPhotos(filter *entity.PhotoFilter, photos []*entity.Photo) []*entity.Photo {
	out := make([]*entity.Photo, 0, len(photos))
	for _, p := range photos {
		if MatchPhoto(filter, p) {
			out = append(out, p)
		}
	}
	return out
}

// SortPhotos orders photos by the sort field and direction, breaking ties by
// photo identity ascending. A nil sort applies the schema default:
// created, descending.
func SortPhotos(s *entity.DataSort, photos []*entity.Photo) []*entity.Photo {
	s = normalizeSort(s)
	out := make([]*entity.Photo, len(photos))
	copy(out, photos)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var less, equal bool
		switch s.Field {
		case entity.SortByName:
			less, equal = a.Name < b.Name, a.Name == b.Name
		default:
			less, equal = a.Created.Before(b.Created), a.Created.Equal(b.Created)
		}
		if equal {
			return a.ID < b.ID
		}
		if s.Direction == entity.SortAscending {
			return less
		}
		return !less
	})
	return out
}

// SortUsers orders users by name (created has no meaning for users), ties and
// the default both falling back to login ascending.
func SortUsers(s *entity.DataSort, users []*entity.User) []*entity.User {
	s = normalizeSort(s)
	out := make([]*entity.User, len(users))
	copy(out, users)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if s.Field == entity.SortByName && a.Name != b.Name {
			if s.Direction == entity.SortAscending {
				return a.Name < b.Name
			}
			return a.Name > b.Name
		}
		return a.GithubLogin < b.GithubLogin
	})
	return out
}

func normalizeSort(s *entity.DataSort) *entity.DataSort {
	out := entity.DataSort{Direction: entity.SortDescending, Field: entity.SortByCreated}
	if s != nil {
		if s.Direction != "" {
			out.Direction = s.Direction
		}
		if s.Field != "" {
			out.Field = s.Field
		}
	}
	return &out
}

// Window returns the bounds of the page window [start, start+first) clamped
// to length n. A start beyond the sequence yields an empty window, not an
// error. Negative values are structurally invalid input.
func Window(page *entity.DataPage, n int) (lo, hi int, err error) {
	start, first := 0, -1
	if page != nil {
		if page.Start != nil {
			start = *page.Start
		}
		if page.First != nil {
			first = *page.First
		}
	}
	if start < 0 {
		return 0, 0, fmt.Errorf("listops: negative start %d", start)
	}
	if page != nil && page.First != nil && first < 0 {
		return 0, 0, fmt.Errorf("listops: negative first %d", first)
	}
	if start > n {
		start = n
	}
	end := n
	if first >= 0 && start+first < n {
		end = start + first
	}
	return start, end, nil
}

// PagePhotos cuts the page window from an already sorted sequence.
func PagePhotos(page *entity.DataPage, photos []*entity.Photo) ([]*entity.Photo, error) {
	lo, hi, err := Window(page, len(photos))
	if err != nil {
		return nil, err
	}
	if lo == hi {
		return []*entity.Photo{}, nil
	}
	return photos[lo:hi:hi], nil
}

// PageUsers cuts the page window from an already sorted sequence.
func PageUsers(page *entity.DataPage, users []*entity.User) ([]*entity.User, error) {
	lo, hi, err := Window(page, len(users))
	if err != nil {
		return nil, err
	}
	if lo == hi {
		return []*entity.User{}, nil
	}
	return users[lo:hi:hi], nil
}
