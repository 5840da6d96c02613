package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Deps, sessions *sessionManager) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(deps.Store.ProjectRepo(), deps.Processor, deps.Assets, deps.Settings),
		heroHandler:    newHeroHandler(deps.Store.SettingsRepo(), deps.Processor, deps.Assets, deps.Settings.UploadDir),
		shareHandler:   newShareHandler(deps.Store.ProjectRepo(), deps.Settings.SiteOrigin),
		authHandler:    newAuthHandler(sessions, deps.Settings),
	}
}
