package emails

import (
	"html"
	"regexp"
)

// Substitutions maps placeholder names to their replacement values.
type Substitutions map[string]string

// Common placeholder keys.
const (
	KeyUserName       = "user_name"
	KeyUserEmail      = "user_email"
	KeySiteURL        = "site_url"
	KeyUnsubscribeURL = "unsubscribe_url"
)

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Render replaces every {{key}} in text with its value from subs. Whitespace
// inside the braces is ignored. Tokens without a value are left verbatim.
// When escape is set, values are HTML-escaped before insertion.
func Render(text string, subs Substitutions, escape bool) string {
	if len(subs) == 0 {
		return text
	}
	return placeholder.ReplaceAllStringFunc(text, func(token string) string {
		key := placeholder.FindStringSubmatch(token)[1]
		value, ok := subs[key]
		if !ok {
			return token
		}
		if escape {
			return html.EscapeString(value)
		}
		return value
	})
}

// with returns a copy of subs with fallback entries added for missing keys.
func (s Substitutions) with(fallback Substitutions) Substitutions {
	out := make(Substitutions, len(s)+len(fallback))
	for k, v := range fallback {
		out[k] = v
	}
	for k, v := range s {
		out[k] = v
	}
	return out
}
