package doctor

import (
	"maps"
	"slices"
	"strings"
)

const masked = "****"

// secretKeyWords mark a variable name as sensitive when any of them appears
// in the upper-cased name.
var secretKeyWords = []string{
	"KEY", "TOKEN", "SECRET", "PASSWORD", "AUTH", "CREDENTIAL", "PRIVATE",
}

// tokenPrefixes identify credentials by value. sk- covers Anthropic
// (sk-ant-) and most other vendors.
var tokenPrefixes = []string{
	"sk-",
	"ghp_", "gho_", "ghu_", "ghs_", "ghr_",
	"AKIA",
	"xoxb-", "xoxp-", "xoxa-", "xoxr-",
}

// ShouldMask reports whether a variable or attribute name looks like it
// holds a credential. Matching ignores case.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	return slices.ContainsFunc(secretKeyWords, func(w string) bool {
		return strings.Contains(upper, w)
	})
}

// ContainsTokenPrefix reports whether value starts like a known API token.
func ContainsTokenPrefix(value string) bool {
	return slices.ContainsFunc(tokenPrefixes, func(p string) bool {
		return strings.HasPrefix(value, p)
	})
}

// MaskValue keeps the last four characters of value. Values too short to
// reveal anything safely are masked entirely.
func MaskValue(value string) string {
	if len(value) <= 4 {
		return masked + masked
	}
	return masked + value[len(value)-4:]
}

// MaskSecrets returns a copy of env with sensitive entries masked.
func MaskSecrets(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := maps.Clone(env)
	for k, v := range out {
		if ShouldMask(k) || ContainsTokenPrefix(v) {
			out[k] = MaskValue(v)
		}
	}
	return out
}
