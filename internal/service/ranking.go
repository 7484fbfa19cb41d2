package service

import (
	"sort"

	"recipehub/internal/models"
)

// Popularity scores a post from how many overall ratings it has and their mean.
// Poorly rated posts are halved and well rated ones get a 50% boost.
func Popularity(count int64, overall float64) float64 {
	base := float64(count)
	switch {
	case overall < 2:
		return base / 2
	case overall > 4:
		return base * 1.5
	default:
		return base
	}
}

// RankPopular returns posts ordered by descending popularity. counts maps post id
// to its number of overall ratings; a missing entry counts as zero. Ties keep input order.
func RankPopular(posts []models.Post, counts map[uint]int64) []models.Post {
	ranked := make([]models.Post, len(posts))
	copy(ranked, posts)

	scores := make(map[uint]float64, len(ranked))
	for _, p := range ranked {
		scores[p.ID] = Popularity(counts[p.ID], p.OverallRating)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	return ranked
}
