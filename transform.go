package pagequery

import "github.com/friendsofgo/errors"

// MapPage converts the items of a page, keeping its navigation. Backends
// use it to turn database rows into the items their API exposes.
//
// Type parameters:
//   - From: Source type (e.g., SQLBoiler model, database row)
//   - To: Target type (e.g., API item)
//
// Returns an error naming the index of the first item transform rejects.
//
// Example usage:
//
//	out, err := pagequery.MapPage(page, func(p *models.Policy) (AccessPolicy, error) {
//	    return toAccessPolicy(p)
//	})
func MapPage[From any, To any](page *Page[From], transform func(From) (To, error)) (*Page[To], error) {
	if page == nil {
		return NewEmptyPage[To](), nil
	}

	out := &Page[To]{
		Data:    make([]To, 0, len(page.Data)),
		HasNext: page.HasNext,
		Next:    page.Next,
		HasPrev: page.HasPrev,
		Prev:    page.Prev,
	}

	for i, item := range page.Data {
		transformed, err := transform(item)
		if err != nil {
			return nil, errors.Wrapf(err, "transform item at index %d", i)
		}
		out.Data = append(out.Data, transformed)
	}

	return out, nil
}
