package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkwellapp/inkwell-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Full-text search over titles and descriptions with filters",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query      string  `query:"q" doc:"Search query"`
	CategoryID string  `query:"category_id" doc:"Filter by category"`
	AuthorID   string  `query:"author_id" doc:"Filter by author"`
	MinPrice   float64 `query:"min_price" minimum:"0" doc:"Minimum price"`
	MaxPrice   float64 `query:"max_price" minimum:"0" doc:"Maximum price"`
	SortBy     string  `query:"sort_by" enum:"relevance,title,price,recent" doc:"Sort field"`
	SortOrder  string  `query:"sort_order" enum:"asc,desc" doc:"Sort direction"`
	Limit      int     `query:"limit" minimum:"0" maximum:"100" doc:"Page size"`
	Offset     int     `query:"offset" minimum:"0" doc:"Page offset"`
}

// SearchOutput wraps search results for Huma.
type SearchOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.CategoryID = input.CategoryID
	params.AuthorID = input.AuthorID
	params.MinPrice = input.MinPrice
	params.MaxPrice = input.MaxPrice
	if input.SortBy != "" {
		params.SortBy = input.SortBy
	}
	if input.SortOrder != "" {
		params.SortOrder = input.SortOrder
	}
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Offset > 0 {
		params.Offset = input.Offset
	}

	result, err := s.services.Search.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
