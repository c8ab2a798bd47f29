package videogen

// Settings carries the caller-supplied credentials and endpoints. Text-model
// and video-model settings are independent; the video workflow needs both.
// Values are immutable per request, so concurrent invocations are safe.
type Settings struct {
	APIKey       string
	BaseURL      string
	Model        string
	VideoAPIKey  string
	VideoBaseURL string
}

// VideoConfig describes one generation request. Model must resolve in the
// static catalog or the request is rejected before any network call. Brand,
// style and target-language fields feed prompt synthesis only.
type VideoConfig struct {
	Model             string
	Duration          int
	AspectRatio       string
	UseImageReference bool
	ReferenceImageURL string
	EnableSound       bool
	BrandName         string
	BrandURL          string
	TargetLanguage    string
	VideoStyle        string
}
