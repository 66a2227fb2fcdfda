package entity

// Page - результат постраничной выборки
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Pagination - метаданные страницы.
// В режиме cursor заполняются next_cursor/previous_cursor, в режиме offset - next_offset/previous_offset
type Pagination struct {
	Limit          int     `json:"limit"`
	Offset         int     `json:"offset"`
	Count          int     `json:"count"`
	Total          int     `json:"total"`
	HasNext        bool    `json:"has_next"`
	HasPrevious    bool    `json:"has_previous"`
	NextOffset     *int    `json:"next_offset"`
	PreviousOffset *int    `json:"previous_offset"`
	NextCursor     *string `json:"next_cursor"`
	PreviousCursor *string `json:"previous_cursor"`
	CursorMode     bool    `json:"-"`
}
