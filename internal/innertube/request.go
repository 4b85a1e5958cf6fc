package innertube

import "strings"

// PlayerRequest is the body of a POST to /youtubei/v1/player.
type PlayerRequest struct {
	Context                    Context                     `json:"context"`
	VideoID                    string                      `json:"videoId"`
	Params                     string                      `json:"params,omitempty"`
	ContentCheckOk             bool                        `json:"contentCheckOk,omitempty"`
	RacyCheckOk                bool                        `json:"racyCheckOk,omitempty"`
	PlaybackContext            PlaybackContext             `json:"playbackContext,omitempty"`
	ServiceIntegrityDimensions *ServiceIntegrityDimensions `json:"serviceIntegrityDimensions,omitempty"`
}

type Context struct {
	Client     ClientInfo     `json:"client"`
	ThirdParty *ThirdParty    `json:"thirdParty,omitempty"`
	Request    RequestContext `json:"request,omitempty"`
}

type ClientInfo struct {
	ClientName       string `json:"clientName"`
	ClientVersion    string `json:"clientVersion"`
	DeviceMake       string `json:"deviceMake,omitempty"`
	DeviceModel      string `json:"deviceModel,omitempty"`
	UserAgent        string `json:"userAgent,omitempty"`
	OsName           string `json:"osName,omitempty"`
	OsVersion        string `json:"osVersion,omitempty"`
	AcceptLanguage   string `json:"hl"`
	VisitorData      string `json:"visitorData,omitempty"`
	TimeZone         string `json:"timeZone"`
	UtcOffsetMinutes int    `json:"utcOffsetMinutes"`
}

type ThirdParty struct {
	EmbedUrl string `json:"embedUrl"`
}

type RequestContext struct {
	UseSsl bool `json:"useSsl"`
}

type PlaybackContext struct {
	ContentPlaybackContext ContentPlaybackContext `json:"contentPlaybackContext"`
}

type ContentPlaybackContext struct {
	Vis                int    `json:"vis"`
	Html5Preference    string `json:"html5Preference"`
	Lact               int64  `json:"lact"`
	SignatureTimestamp int    `json:"signatureTimestamp,omitempty"`
}

// ServiceIntegrityDimensions carries the PoToken. It is only populated for
// profiles that NeedsOriginToken.
type ServiceIntegrityDimensions struct {
	PoToken string `json:"poToken,omitempty"`
}

// PlayerRequestOptions carries the per-call values the caller supplies on
// top of a profile's static fields.
type PlayerRequestOptions struct {
	VisitorID          string
	SignatureTimestamp int
}

// NewPlayerRequest builds a player request impersonating profile. The
// PoToken, if any, is attached separately via SetPoToken so callers that
// don't have one yet (a profile with NeedsOriginToken false) never touch
// ServiceIntegrityDimensions.
func NewPlayerRequest(profile ClientProfile, videoID string, opts PlayerRequestOptions) *PlayerRequest {
	clientInfo := ClientInfo{
		ClientName:       profile.Name,
		ClientVersion:    profile.Version,
		UserAgent:        profile.UserAgent,
		AcceptLanguage:   "en",
		VisitorData:      opts.VisitorID,
		TimeZone:         "UTC",
		UtcOffsetMinutes: 0,
	}
	applyClientContextDefaults(&clientInfo, profile)

	req := &PlayerRequest{
		VideoID:        videoID,
		RacyCheckOk:    true,
		ContentCheckOk: true,
		Context: Context{
			Client:  clientInfo,
			Request: RequestContext{UseSsl: true},
		},
		PlaybackContext: PlaybackContext{
			ContentPlaybackContext: ContentPlaybackContext{
				Html5Preference:    "HTML5_PREF_WANTS",
				Lact:               -1,
				SignatureTimestamp: opts.SignatureTimestamp,
			},
		},
	}

	if profile.Embedded {
		req.Context.ThirdParty = &ThirdParty{EmbedUrl: "https://www.youtube.com/"}
	}

	return req
}

// SetPoToken attaches a PoToken to the request. Callers must only invoke
// this for profiles with NeedsOriginToken true and a non-empty token,
// otherwise the resolver would send pot= to profiles that never asked for
// one — the bug spec.md's Open Questions asked to fix.
func (r *PlayerRequest) SetPoToken(token string) {
	if token == "" {
		return
	}
	r.ServiceIntegrityDimensions = &ServiceIntegrityDimensions{PoToken: token}
}

func applyClientContextDefaults(client *ClientInfo, profile ClientProfile) {
	switch strings.ToUpper(strings.TrimSpace(profile.Name)) {
	case "ANDROID_VR":
		client.OsName = "Android"
		client.OsVersion = "12L"
		client.DeviceMake = "Oculus"
		client.DeviceModel = "Quest 3"
	case "IOS":
		client.OsName = "iPhone"
		client.OsVersion = "18.3.2.22D82"
		client.DeviceMake = "Apple"
		client.DeviceModel = "iPhone16,2"
	case "ANDROID_MUSIC":
		client.OsName = "Android"
		client.OsVersion = "11"
		client.DeviceMake = "Google"
		client.DeviceModel = "Pixel 5"
	case "TVHTML5_SIMPLY_EMBEDDED_PLAYER":
		client.OsName = "Cobalt"
		client.OsVersion = "25"
		client.DeviceMake = "Unknown"
		client.DeviceModel = "TV"
	default:
		client.OsName = "Windows"
		client.OsVersion = "10.0"
		client.DeviceMake = "Microsoft"
		client.DeviceModel = "Desktop"
	}
}
