package schema

// PaginatedResponse represents a unified paginated API response.
// The backend pages by page number and reports a total page count, so the
// metadata mirrors that shape.
type PaginatedResponse[T any] struct {
	Pagination *PaginationMetadata `json:"pagination"`
	Data       []T                 `json:"data"`
}

// PaginationMetadata represents the metadata present in a PaginatedResponse
type PaginationMetadata struct {
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
	TotalPages    int    `json:"total_pages"`
	Search        string `json:"search,omitempty"`
	IncludedCount int    `json:"included_count"`
}

// BuildPaginatedResponse builds a unified paginated API response
func BuildPaginatedResponse[T any](page, pageSize, totalPages int, search string, data []T) *PaginatedResponse[T] {
	return &PaginatedResponse[T]{
		Pagination: &PaginationMetadata{
			Page:          page,
			PageSize:      pageSize,
			TotalPages:    totalPages,
			Search:        search,
			IncludedCount: len(data),
		},
		Data: data,
	}
}
