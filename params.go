// Package pagequery implements the query protocol shared by the console's
// paginated list views: namespaced request parameters, sort toggling,
// opaque cursor navigation and the paged response model.
//
// Every list view reserves a prefix (e.g. "edges_", "mutators_") and the six
// recognized keys below. Pages sharing one URL must use disjoint prefixes.
//
// Example:
//
//	params := pagequery.Extract("mutators_", r.URL.Query())
//	params = pagequery.NewPageConfig().WithDefaultSize(20).WithDefaults(params)
//	page, err := client.List[Mutator](ctx, c, "/userstore/config/mutators", pagequery.RequestFromParams(params).Values())
package pagequery

import "net/url"

// Recognized request keys.
const (
	KeyFilter        = "filter"
	KeyStartingAfter = "starting_after"
	KeyEndingBefore  = "ending_before"
	KeyLimit         = "limit"
	KeySortKey       = "sort_key"
	KeySortOrder     = "sort_order"

	// KeyVersion is added to outgoing requests only; it is never extracted.
	KeyVersion = "version"
)

// Keys lists the recognized request keys in extraction order.
var Keys = []string{
	KeyFilter,
	KeyStartingAfter,
	KeyEndingBefore,
	KeyLimit,
	KeySortKey,
	KeySortOrder,
}

// Tenant-scoping parameters that survive a sort change.
const (
	ParamCompanyID = "company_id"
	ParamTenantID  = "tenant_id"
)

// Prefix namespaces the recognized keys of one list view.
type Prefix string

// Key returns the namespaced name of a recognized key.
func (p Prefix) Key(key string) string {
	return string(p) + key
}

// Extract copies every recognized key present as prefix+key in params into
// the result under its bare name. Absent keys are omitted, never defaulted.
// params is not modified.
func Extract(prefix string, params url.Values) map[string]string {
	out := make(map[string]string, len(Keys))
	if params == nil {
		return out
	}

	p := Prefix(prefix)
	for _, key := range Keys {
		if vs, ok := params[p.Key(key)]; ok && len(vs) > 0 {
			out[key] = vs[0]
		}
	}

	return out
}

// CloneValues returns a deep copy of v. Every helper that derives a new
// parameter set starts from a clone so the caller's values stay untouched.
func CloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// ClearCursors removes both cursor keys of prefix from params in place.
func ClearCursors(prefix string, params url.Values) {
	p := Prefix(prefix)
	params.Del(p.Key(KeyStartingAfter))
	params.Del(p.Key(KeyEndingBefore))
}
