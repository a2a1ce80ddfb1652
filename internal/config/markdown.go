package config

import "regexp"

const (
	MarkdownEngineMmark   = "mmark"
	MarkdownEngineClassic = "classic"
)

var (
	RegexCallout = regexp.MustCompile(`//\s*<<(\d+)>>`)

	// RegexImageSize matches the sized image form ![alt](url =WxH).
	RegexImageSize = regexp.MustCompile(`!\[([^\]]*)\]\(([^\s)]+)\s+=(\d+)x(\d+)\)`)

	// RegexImageSizeTitle matches the title RegexImageSize rewrites to.
	RegexImageSizeTitle = regexp.MustCompile(`^=(\d+)x(\d+)$`)
)
