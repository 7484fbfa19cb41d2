package service

import (
	"recipehub/internal/models"
)

// FilterByTags keeps the posts that carry every requested tag. An empty request
// returns posts unchanged; an unknown tag name is a validation error.
func FilterByTags(posts []models.Post, tags []string) ([]models.Post, error) {
	want, err := models.ParseTags(tags)
	if err != nil {
		return nil, err
	}
	return filterParsed(posts, want), nil
}

func filterParsed(posts []models.Post, want []models.Tag) []models.Post {
	if len(want) == 0 {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Tags.HasAll(want) {
			out = append(out, p)
		}
	}
	return out
}
