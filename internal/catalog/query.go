package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// ListParams are the validated inputs of a list query.
// A nil Limit means "everything from Offset to the end".
type ListParams struct {
	Text   string
	Limit  *int
	Offset int
}

type Page struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// ParseListParams validates list query values. limit and offset are optional,
// but when present, even with an empty value, they must be non-negative
// integers.
func ParseListParams(v url.Values) (ListParams, error) {
	p := ListParams{Text: v.Get("q")}

	if v.Has("limit") {
		n, err := parseNonNegative(v.Get("limit"))
		if err != nil {
			return ListParams{}, invalid("limit", "must be a non-negative integer")
		}
		p.Limit = &n
	}
	if v.Has("offset") {
		n, err := parseNonNegative(v.Get("offset"))
		if err != nil {
			return ListParams{}, invalid("offset", "must be a non-negative integer")
		}
		p.Offset = n
	}
	return p, nil
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

// Query filters items by a case-insensitive substring of the name, then
// slices the matches. Total counts all matches regardless of paging.
func Query(items []Item, p ListParams) Page {
	filtered := items
	if p.Text != "" {
		needle := strings.ToLower(p.Text)
		filtered = make([]Item, 0, len(items))
		for _, it := range items {
			if strings.Contains(strings.ToLower(it.Name), needle) {
				filtered = append(filtered, it)
			}
		}
	}

	total := len(filtered)
	start := min(max(p.Offset, 0), total)
	end := total
	if p.Limit != nil && *p.Limit < end-start {
		end = start + max(*p.Limit, 0)
	}

	out := make([]Item, end-start)
	copy(out, filtered[start:end])
	return Page{Items: out, Total: total}
}
