// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and assets
	RobotsPath     = "/robots.txt"
	SyntaxThemeGet = "/syntax-theme/{theme}"

	// Root
	RootPath = "/"

	// Sessions
	APISessions       = "/api/sessions"
	APISession        = "/api/sessions/{id}"
	APISessionEvents  = "/api/sessions/{id}/events"
	APISessionInput   = "/api/sessions/{id}/input"
	APISessionKeys    = "/api/sessions/{id}/keys"
	APISessionPaste   = "/api/sessions/{id}/paste"
	APISessionDrop    = "/api/sessions/{id}/drop"
	APISessionScroll  = "/api/sessions/{id}/scroll"
	APISessionPrompt  = "/api/sessions/{id}/prompts/{prompt}"
	APISessionBlob    = "/api/sessions/{id}/blobs/{blob}"
	APISessionBlobFmt = "/api/sessions/%s/blobs/%s"
)
