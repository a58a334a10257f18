package library

// WindowSlice returns a copy of records[page*pageSize : page*pageSize+pageSize],
// clamped to the end of records. Page is 0-based. A negative page, a
// non-positive size or a page past the end yields an empty slice.
func WindowSlice(records []GameRecord, page, pageSize int) []GameRecord {
	if page < 0 || pageSize <= 0 || page > len(records)/pageSize {
		return []GameRecord{}
	}

	start := page * pageSize
	if start >= len(records) {
		return []GameRecord{}
	}
	end := min(start+pageSize, len(records))

	window := make([]GameRecord, end-start)
	copy(window, records[start:end])
	return window
}

// PageCount returns how many windows of pageSize it takes to show total records.
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [0, PageCount-1] so a window never points past
// the end after the library shrinks (for example when a filter is applied).
func ClampPage(page, total, pageSize int) int {
	last := PageCount(total, pageSize) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}
