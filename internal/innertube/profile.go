package innertube

import "net/http"

// StreamingProtocol is the delivery mechanism for a given AudioVariant.
type StreamingProtocol string

const (
	ProtocolHTTPS StreamingProtocol = "https"
	ProtocolDASH  StreamingProtocol = "dash"
	ProtocolHLS   StreamingProtocol = "hls"
)

// ClientProfile is one of the fixed client impersonations the resolver
// trials against the player endpoint. The set is closed: see Registry.
type ClientProfile struct {
	Name          string // InnerTube clientName, e.g. "ANDROID_VR"
	Version       string
	ContextNameID int
	UserAgent     string
	Host          string
	APIKey        string

	// NeedsOriginToken marks profiles whose player requests require a
	// PoToken before YouTube returns a usable playabilityStatus. Only
	// these profiles get `pot=` appended to their stream URLs.
	NeedsOriginToken bool

	// SupportsSignatureCipher marks profiles whose adaptive formats come
	// back signature-ciphered (requiring C3) rather than with a bare URL.
	SupportsSignatureCipher bool

	// Embedded marks profiles that identify as an embedded iframe player,
	// which changes the context payload (see request.go).
	Embedded bool

	Headers http.Header
}

// Registry exposes the closed client-profile table and the two orderings
// the resolver and metadata lookups need.
type Registry interface {
	Get(name string) (ClientProfile, bool)
	All() []ClientProfile
	// PlaybackOrder returns the profiles tried, in order, when resolving a
	// playable stream: AndroidVR, iOS, AndroidMusic.
	PlaybackOrder() []ClientProfile
	// MetadataProfile returns the profile used for metadata-only lookups
	// (duration, title) that don't need a playable stream: WebRemix.
	MetadataProfile() ClientProfile
}
