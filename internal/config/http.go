package config

const (
	HCType        = "Content-Type"
	HETag         = "ETag"
	HCacheControl = "Cache-Control"
	HCSP          = "Content-Security-Policy"

	CTypeCSS  = "text/css"
	CTypeHTML = "text/html"
	CTypeJSON = "application/json"
	CTypeSSE  = "text/event-stream"
)

// CSPInert keeps user supplied files from running anything when opened
// directly.
const CSPInert = "default-src 'none'; sandbox"

const (
	HTTPErrMethodNotAllowed = "Method not allowed"
	HTTPErrSessionNotFound  = "Session not found"
)

const (
	CookieSyntaxTheme = "syntax-theme"
)

const (
	StaticLocalDir = "static"
	StaticUrlPath  = "/" + StaticLocalDir + "/"

	TemplatesLocalDir = "templates"

	TemplateLayout = "layout.html"
	TemplateIndex  = "index.html"
	TemplateUpload = "upload.html"

	// MaxMultipartMemory bounds the in-memory part of paste and drop forms.
	MaxMultipartMemory = 32 << 20
)
