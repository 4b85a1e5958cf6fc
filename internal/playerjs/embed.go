package playerjs

import "regexp"

// DefaultSignatureTimestamp is the fallback `sts` value sent on player
// requests when it cannot be scraped from the current player JS. YouTube
// tolerates a slightly stale sts; requests simply fail playability checks
// if it drifts too far, which the resolver's profile fallback absorbs.
const DefaultSignatureTimestamp = 20073

var signatureTimestampRegexp = regexp.MustCompile(`(?:signatureTimestamp|sts)\s*:\s*(\d{5})`)

// ExtractSignatureTimestamp scrapes the `sts` constant embedded in player
// JS. It returns DefaultSignatureTimestamp when the pattern isn't found,
// since player requests can still succeed with a mildly stale timestamp.
func ExtractSignatureTimestamp(jsBody []byte) int {
	m := signatureTimestampRegexp.FindSubmatch(jsBody)
	if len(m) < 2 {
		return DefaultSignatureTimestamp
	}
	var sts int
	for _, c := range m[1] {
		sts = sts*10 + int(c-'0')
	}
	if sts == 0 {
		return DefaultSignatureTimestamp
	}
	return sts
}
