package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands environment variables in s.
//
// Semantics:
//   - `$VAR` and `${VAR}` are expanded via os.Expand with lookup.
//   - If `${VAR}` is present but VAR is unset, it errors naming every
//     missing variable.
//   - `$$` emits a literal `$`.
//
// A nil lookup uses os.LookupEnv.
func ExpandEnvStrict(s string, lookup func(string) (string, bool)) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	const dollarSentinel = "\x00HAGEL_CONFIG_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollarSentinel)

	missing := make(map[string]struct{})
	for _, match := range envVarPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := lookup(match[1]); !ok {
			missing[match[1]] = struct{}{}
		}
	}
	if len(missing) > 0 {
		keys := make([]string, 0, len(missing))
		for k := range missing {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("config: missing environment variables: %s", strings.Join(keys, ", "))
	}

	s = os.Expand(s, func(key string) string {
		v, _ := lookup(key)
		return v
	})
	return strings.ReplaceAll(s, dollarSentinel, "$"), nil
}
