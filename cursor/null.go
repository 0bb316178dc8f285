package cursor

import (
	"time"

	"github.com/aarondl/null/v8"
)

// unwrapNull turns nullable wrappers into their value, or nil when NULL.
func unwrapNull(v any) any {
	switch val := v.(type) {
	case null.String:
		if !val.Valid {
			return nil
		}
		return val.String
	case null.Int:
		if !val.Valid {
			return nil
		}
		return val.Int
	case null.Int64:
		if !val.Valid {
			return nil
		}
		return val.Int64
	case null.Time:
		if !val.Valid {
			return nil
		}
		return val.Time
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	case *time.Time:
		if val == nil {
			return nil
		}
		return *val
	}
	return v
}
