package decoder

// Pagination is the page metadata some APIs return next to the records.
// Zero fields were absent.
type Pagination struct {
	Total       int
	CurrentPage int
	PerPage     int
	LastPage    int
}

// Pagination looks for metadata under "meta.pagination", "meta" and the
// top level of the payload, in that order. It reports false when no total
// is found.
func (d *JSONDecoder) Pagination(payload any) (Pagination, bool) {
	root, ok := payload.(map[string]any)
	if !ok {
		return Pagination{}, false
	}
	var candidates []map[string]any
	if meta, ok := root["meta"].(map[string]any); ok {
		if nested, ok := meta["pagination"].(map[string]any); ok {
			candidates = append(candidates, nested)
		}
		candidates = append(candidates, meta)
	}
	candidates = append(candidates, root)

	for _, c := range candidates {
		total, ok := ToInt(c["total"])
		if !ok {
			continue
		}
		p := Pagination{Total: total}
		p.CurrentPage, _ = ToInt(c["current_page"])
		p.PerPage, _ = ToInt(c["per_page"])
		p.LastPage, _ = ToInt(c["last_page"])
		return p, true
	}
	return Pagination{}, false
}
