package services

import "spacetraveling/pkg/models"

// AssemblePostPage combines a post with its adjacent-post candidates. Each
// candidate slice comes from a one-result query; only its first element is
// used and an empty slice leaves that side absent.
func AssemblePostPage(post models.Post, previous, next []models.NavLink, preview bool) models.PostPageModel {
	return models.PostPageModel{
		Post:        post,
		ReadingTime: EstimateReadingTime(post.Sections),
		Navigation: models.NavigationLinks{
			Previous: firstLink(previous),
			Next:     firstLink(next),
		},
		Preview: preview,
	}
}

func firstLink(candidates []models.NavLink) models.Optional[models.NavLink] {
	if len(candidates) == 0 {
		return models.None[models.NavLink]()
	}
	return models.Some(candidates[0])
}
