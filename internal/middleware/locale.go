package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type targetLanguageKey struct{}

// TargetLanguageKey stores the detected prompt language in the request
// context.
var TargetLanguageKey = targetLanguageKey{}

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// countryLanguages maps caller regions to the target languages the video
// prompt stage supports. Everything else writes prompts in English.
var countryLanguages = map[string]string{
	"CN": "zh-CN",
	"JP": "ja",
	"KR": "ko",
}

// TargetLanguage derives the default prompt language for a request: an
// explicit X-Target-Language header wins, then the Accept-Language header,
// then the caller's country resolved through the lookup. Requests that carry
// their own target_language override this default at the handler level.
func TargetLanguage(fallback string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := detectTargetLanguage(r, fallback, lookup)
			ctx := context.WithValue(r.Context(), TargetLanguageKey, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TargetLanguageFromContext returns the detected language, defaulting to
// English.
func TargetLanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(TargetLanguageKey).(string); ok && v != "" {
		return v
	}
	return "en"
}

func detectTargetLanguage(r *http.Request, fallback string, lookup CountryLookup) string {
	if v := normalizeLanguage(r.Header.Get("X-Target-Language")); v != "" {
		return v
	}
	if v := parseAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if country := resolveCountry(r, lookup); country != "" {
		if lang, ok := countryLanguages[country]; ok {
			return lang
		}
		return "en"
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

func parseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		if token == "" {
			continue
		}
		return normalizeLanguage(token)
	}
	return ""
}

// normalizeLanguage folds a language tag onto the supported set. Chinese
// variants collapse to zh-CN; unsupported tags are dropped so detection can
// fall through to the next signal.
func normalizeLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch {
	case tag == "":
		return ""
	case strings.HasPrefix(tag, "zh"):
		return "zh-CN"
	case strings.HasPrefix(tag, "ja"):
		return "ja"
	case strings.HasPrefix(tag, "ko"):
		return "ko"
	case strings.HasPrefix(tag, "en"):
		return "en"
	default:
		return ""
	}
}

// resolveCountry tries proxy-injected headers first, then the GeoIP lookup.
func resolveCountry(r *http.Request, lookup CountryLookup) string {
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
