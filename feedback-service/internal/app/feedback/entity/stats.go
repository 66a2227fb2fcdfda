package entity

import (
	"strconv"

	"github.com/google/uuid"
)

// TagCount - тег и число отзывов с ним
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Stats - агрегаты по отфильтрованному множеству отзывов
type Stats struct {
	Count        int                 `json:"count_total"`
	Mean         *float64            `json:"mean"`         // null при пустой выборке
	Distribution map[string]int      `json:"distribution"` // ключи "1".."5"
	Facets       map[string]*float64 `json:"facet_averages"`
	TopTags      []TagCount          `json:"top_tags"`
}

// EmptyStats - агрегаты пустой выборки: плотная гистограмма из нулей, средние null
func EmptyStats(facets []string) *Stats {
	s := &Stats{
		Distribution: make(map[string]int, 5),
		Facets:       make(map[string]*float64, len(facets)),
		TopTags:      []TagCount{},
	}
	for k := 1; k <= 5; k++ {
		s.Distribution[strconv.Itoa(k)] = 0
	}
	for _, f := range facets {
		s.Facets[f] = nil
	}
	return s
}

// ProfileStatsResponse - агрегаты отзывов о профиле
type ProfileStatsResponse struct {
	RevieweeProfileID uuid.UUID           `json:"reviewee_profile_id"`
	CountTotal        int                 `json:"count_total"`
	AvgOverall        *float64            `json:"avg_overall_experience"`
	Distribution      map[string]int      `json:"distribution_overall_experience"`
	FacetAverages     map[string]*float64 `json:"facet_averages"`
	TopTags           []TagCount          `json:"top_tags"`
	Links             map[string]string   `json:"links"`
}

func NewProfileStatsResponse(revieweeID uuid.UUID, s *Stats, links map[string]string) ProfileStatsResponse {
	return ProfileStatsResponse{
		RevieweeProfileID: revieweeID,
		CountTotal:        s.Count,
		AvgOverall:        s.Mean,
		Distribution:      s.Distribution,
		FacetAverages:     s.Facets,
		TopTags:           s.TopTags,
		Links:             links,
	}
}

// AppStatsResponse - агрегаты отзывов о приложении
type AppStatsResponse struct {
	AuthorProfileID *uuid.UUID          `json:"author_profile_id,omitempty"`
	CountTotal      int                 `json:"count_total"`
	AvgOverall      *float64            `json:"avg_overall"`
	Distribution    map[string]int      `json:"distribution_overall"`
	FacetAverages   map[string]*float64 `json:"facet_averages"`
	TopTags         []TagCount          `json:"top_tags"`
	Links           map[string]string   `json:"links"`
}

func NewAppStatsResponse(authorID *uuid.UUID, s *Stats, links map[string]string) AppStatsResponse {
	return AppStatsResponse{
		AuthorProfileID: authorID,
		CountTotal:      s.Count,
		AvgOverall:      s.Mean,
		Distribution:    s.Distribution,
		FacetAverages:   s.Facets,
		TopTags:         s.TopTags,
		Links:           links,
	}
}
