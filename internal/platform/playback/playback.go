package playback

import (
	"net/url"
	"strings"
)

const (
	DefaultLivePrefix     = "https://player.batchcatalog.app/live?videoUrl="
	DefaultRecordedPrefix = "https://player.batchcatalog.app/watch?videoUrl="

	// Unplayable is returned for blank locators.
	Unplayable = "#"

	embeddedParam = "videoUrl"
)

type Normalizer struct {
	LivePrefix     string
	RecordedPrefix string
}

func NewNormalizer(livePrefix, recordedPrefix string) Normalizer {
	n := Normalizer{
		LivePrefix:     strings.TrimSpace(livePrefix),
		RecordedPrefix: strings.TrimSpace(recordedPrefix),
	}
	if n.LivePrefix == "" {
		n.LivePrefix = DefaultLivePrefix
	}
	if n.RecordedPrefix == "" {
		n.RecordedPrefix = DefaultRecordedPrefix
	}
	return n
}

// Normalize turns a stored locator into a playable url. Already-wrapped urls
// come back unchanged and the Unplayable sentinel passes through, so
// Normalize is idempotent.
func (n Normalizer) Normalize(raw string, isLive bool) string {
	if n.wrapped(raw) {
		return raw
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == Unplayable {
		return Unplayable
	}
	if n.wrapped(trimmed) {
		return trimmed
	}
	prefix := n.RecordedPrefix
	if isLive {
		prefix = n.LivePrefix
	}
	return prefix + escape(trimmed)
}

func (n Normalizer) wrapped(s string) bool {
	return strings.HasPrefix(s, n.LivePrefix) || strings.HasPrefix(s, n.RecordedPrefix)
}

// escape percent-encodes s as a single query value. Spaces become %20, not +.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Unwrap extracts the media url carried in an embedded player link's
// videoUrl query parameter. The value is percent-decoded only, so a literal
// + stays a +. Anything else is returned unchanged.
func Unwrap(raw string) string {
	if !strings.Contains(raw, embeddedParam+"=") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key != embeddedParam {
			continue
		}
		inner, err := url.PathUnescape(value)
		if err != nil {
			return raw
		}
		if inner = strings.TrimSpace(inner); inner == "" {
			return raw
		}
		return inner
	}
	return raw
}
