package config

import (
	"fmt"
	"strings"
)

// ValidatePublicPath rejects base paths that would break route
// registration or let the login redirect escape the site.
func ValidatePublicPath(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("public path must not be empty")
	case !strings.HasPrefix(s, "/"):
		return fmt.Errorf("public path must start with '/'")
	case len(s) > 1 && strings.HasSuffix(s, "/"):
		return fmt.Errorf("public path must not end with '/'")
	case strings.Contains(s, "//"):
		return fmt.Errorf("public path must not contain '//'")
	case strings.Contains(s, "."):
		return fmt.Errorf("public path must not contain '.'")
	case strings.ContainsAny(s, "{}*:"):
		return fmt.Errorf("public path must not contain route wildcards")
	}
	return nil
}
