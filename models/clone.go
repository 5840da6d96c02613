package models

// CloneProject returns an independent copy so cached records cannot be
// mutated through a caller's reference.
func CloneProject(project ProjectRecord) ProjectRecord {
	cloned := project

	cloned.Media = make([]MediaDescriptor, len(project.Media))
	for i, media := range project.Media {
		cloned.Media[i] = media
		if media.Focus != nil {
			focus := *media.Focus
			cloned.Media[i].Focus = &focus
		}
	}

	if project.Tags != nil {
		cloned.Tags = append([]string(nil), project.Tags...)
	}
	if project.Order != nil {
		order := *project.Order
		cloned.Order = &order
	}
	return cloned
}

// CloneProjects copies the whole collection.
func CloneProjects(projects []ProjectRecord) []ProjectRecord {
	cloned := make([]ProjectRecord, len(projects))
	for i, project := range projects {
		cloned[i] = CloneProject(project)
	}
	return cloned
}

// CloneHeroVideo copies the singleton record, nil-safe.
func CloneHeroVideo(hero *HeroVideo) *HeroVideo {
	if hero == nil {
		return nil
	}
	cloned := *hero
	if hero.Media.Focus != nil {
		focus := *hero.Media.Focus
		cloned.Media.Focus = &focus
	}
	return &cloned
}
