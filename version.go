package setter

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the release version of setter.
var Version = strings.TrimSpace(version)
