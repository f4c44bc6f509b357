package shared

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// NormalizePage clamps listing parameters to sane bounds.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
