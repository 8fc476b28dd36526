package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int
	Offset int
}

// Page reads limit and offset from the query string. Absent values take the
// defaults, a limit above maxLimit is clamped, and anything that is not a
// positive limit or a non-negative offset is reported as an issue.
func (v *Validator) Page(r *http.Request, defaultLimit, maxLimit int) Pagination {
	page := Pagination{Limit: defaultLimit}
	query := r.URL.Query()
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			v.Add("limit", "must be a positive integer")
		} else {
			page.Limit = limit
		}
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			v.Add("offset", "must be zero or a positive integer")
		} else {
			page.Offset = offset
		}
	}
	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page
}
