package expand

import (
	"os"
	"regexp"
	"strings"
)

var re = regexp.MustCompile(`\$\{([a-zA-Z0-9_.-]+)(?::-([^}]*))?\}`)

// Expand replaces every ${key} in v with mapping(key). A ${key:-fallback}
// form yields fallback when mapping returns the empty string.
func Expand(v string, mapping func(string) string) string {
	return re.ReplaceAllStringFunc(v, func(s string) string {
		m := re.FindStringSubmatch(s)
		if r := mapping(m[1]); r != "" {
			return r
		}
		return m[2]
	})
}

// Env resolves "env.NAME" keys from the process environment.
func Env(key string) string {
	if name, ok := strings.CutPrefix(key, "env."); ok {
		return os.Getenv(name)
	}
	return ""
}
