package services

const (
	maxPageSize = 100
	searchLimit = 50
)

// normalizePage clamps page to >= 1 and limit to (0, maxPageSize], using def
// when limit is unset.
func normalizePage(page, limit, def int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func pageCount(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
