// Package args converts coerced argument values into the typed value objects
// the resolver layer consumes. Coercion has already merged schema defaults
// for omitted keys; a key that is present with a nil value records an
// explicit null from the caller and stays null here.
package args

import (
	"fmt"
	"time"

	"github.com/hanpama/snapgraph/internal/entity"
)

// ListArgs carries the three list modifiers of a collection field. Any of
// them may be nil when the caller nulled or omitted the argument.
type ListArgs struct {
	Filter *entity.PhotoFilter
	Page   *entity.DataPage
	Sort   *entity.DataSort
}

// DecodeListArgs reads the filter, paging and sort arguments out of a
// coerced argument map.
func DecodeListArgs(argv map[string]any) (ListArgs, error) {
	var out ListArgs
	var err error
	if out.Filter, err = DecodeFilter(argv["filter"]); err != nil {
		return out, err
	}
	if out.Page, err = DecodePage(argv["paging"]); err != nil {
		return out, err
	}
	if out.Sort, err = DecodeSort(argv["sorting"]); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeFilter builds a PhotoFilter from a coerced PhotoFilter input object.
// Nil input yields a nil filter, which matches everything downstream.
func DecodeFilter(v any) (*entity.PhotoFilter, error) {
	if v == nil {
		return nil, nil
	}
	if f, ok := v.(*entity.PhotoFilter); ok {
		return f, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("filter: expected input object, got %T", v)
	}
	var f entity.PhotoFilter
	if raw := obj["category"]; raw != nil {
		s, err := asString(raw, "filter.category")
		if err != nil {
			return nil, err
		}
		cat, err := entity.ParsePhotoCategory(s)
		if err != nil {
			return nil, fmt.Errorf("filter.category: %w", err)
		}
		f.Category = &cat
	}
	if raw := obj["createdBetween"]; raw != nil {
		r, err := decodeDateRange(raw)
		if err != nil {
			return nil, err
		}
		f.CreatedBetween = r
	}
	if raw := obj["taggedUsers"]; raw != nil {
		logins, err := asStringList(raw, "filter.taggedUsers")
		if err != nil {
			return nil, err
		}
		f.TaggedUsers = logins
	}
	if raw := obj["searchText"]; raw != nil {
		s, err := asString(raw, "filter.searchText")
		if err != nil {
			return nil, err
		}
		f.SearchText = &s
	}
	return &f, nil
}

func decodeDateRange(v any) (*entity.DateRange, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("filter.createdBetween: expected input object, got %T", v)
	}
	start, err := asTime(obj["start"], "filter.createdBetween.start")
	if err != nil {
		return nil, err
	}
	end, err := asTime(obj["end"], "filter.createdBetween.end")
	if err != nil {
		return nil, err
	}
	return &entity.DateRange{Start: start, End: end}, nil
}

// DecodePage builds a DataPage from a coerced DataPage input object. Keys
// nulled by the caller stay nil: nil first means no limit, nil start means
// the beginning.
func DecodePage(v any) (*entity.DataPage, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*entity.DataPage); ok {
		return p, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("paging: expected input object, got %T", v)
	}
	var p entity.DataPage
	if raw := obj["first"]; raw != nil {
		n, err := asInt(raw, "paging.first")
		if err != nil {
			return nil, err
		}
		p.First = &n
	}
	if raw := obj["start"]; raw != nil {
		n, err := asInt(raw, "paging.start")
		if err != nil {
			return nil, err
		}
		p.Start = &n
	}
	return &p, nil
}

// DecodeSort builds a DataSort from a coerced DataSort input object.
func DecodeSort(v any) (*entity.DataSort, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(*entity.DataSort); ok {
		return s, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sorting: expected input object, got %T", v)
	}
	var s entity.DataSort
	if raw := obj["sort"]; raw != nil {
		dir, err := asString(raw, "sorting.sort")
		if err != nil {
			return nil, err
		}
		switch d := entity.SortDirection(dir); d {
		case entity.SortAscending, entity.SortDescending:
			s.Direction = d
		default:
			return nil, fmt.Errorf("sorting.sort: unknown direction %q", dir)
		}
	}
	if raw := obj["sortBy"]; raw != nil {
		field, err := asString(raw, "sorting.sortBy")
		if err != nil {
			return nil, err
		}
		switch f := entity.SortField(field); f {
		case entity.SortByCreated, entity.SortByName:
			s.Field = f
		default:
			return nil, fmt.Errorf("sorting.sortBy: unknown field %q", field)
		}
	}
	return &s, nil
}

func asString(v any, at string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", at, v)
	}
	return s, nil
}

func asStringList(v any, at string) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, err := asString(item, at)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s: expected list, got %T", at, v)
}

func asInt(v any, at string) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%s: expected integer, got %v", at, n)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("%s: expected integer, got %T", at, v)
}

func asTime(v any, at string) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s: %w", at, err)
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%s: expected DateTime, got %T", at, v)
}
