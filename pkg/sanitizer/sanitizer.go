// Package sanitizer provides input normalization for marketplace data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
package sanitizer

import (
	"net/url"
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersOnly  = regexp.MustCompile(`[^\p{L}]+`)
	reKeepHandleChars  = regexp.MustCompile(`[^a-z0-9._]+`)
	reTrimUnderscores  = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// SanitizeCity lowercases and strips everything but letters, so
// "Tel Aviv" and "tel-aviv" both normalize to "telaviv".
func SanitizeCity(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersOnly.ReplaceAllString(s, "") },
	}
	return p.Apply(input)
}

// SanitizeHandle normalizes a social-media handle: lowercase, no
// leading @, only the characters the platforms themselves allow.
func SanitizeHandle(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return strings.TrimPrefix(s, "@") },
		func(s string) string { return reKeepHandleChars.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}

// SanitizeURL canonicalizes a user-submitted URL: https scheme enforced,
// host lowercased without www, trailing slashes and utm_* tracking
// parameters dropped. Returns "" when the input is not a usable URL.
func SanitizeURL(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	if !strings.HasPrefix(strings.ToLower(s), "http://") && !strings.HasPrefix(strings.ToLower(s), "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	if after, ok := strings.CutPrefix(u.Host, "www."); ok {
		u.Host = after
	}
	u.Path = strings.TrimSuffix(strings.TrimSpace(u.Path), "/")

	q := u.Query()
	qClean := url.Values{}
	for k, values := range q {
		key := strings.TrimSpace(strings.ToLower(k))
		if strings.HasPrefix(key, "utm_") {
			continue
		}
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				qClean.Add(key, v)
			}
		}
	}
	u.RawQuery = qClean.Encode()
	u.Fragment = ""

	return u.String()
}
