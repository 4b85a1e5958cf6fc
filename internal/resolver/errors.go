package resolver

import "fmt"

// FailureKind is the typed error taxonomy spec.md §7 defines.
type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailureNeedsOriginToken
	FailureContentRefused
	FailureNoSuitableFormat
	FailureUnauthenticated
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureNeedsOriginToken:
		return "needs_origin_token"
	case FailureContentRefused:
		return "content_refused"
	case FailureNoSuitableFormat:
		return "no_suitable_format"
	case FailureUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Failure is the typed error every public resolve operation can return.
// Grounded on the teacher's client/errors.go sentinel+DetailError+Is
// pattern: Failure implements error directly (no package sentinel to
// compare against) but still carries enough structure for callers to
// errors.As into it.
type Failure struct {
	Kind    FailureKind
	Reason  string
	Profile string
}

func (f *Failure) Error() string {
	if f.Profile != "" {
		return fmt.Sprintf("resolver: %s (%s): %s", f.Kind, f.Profile, f.Reason)
	}
	return fmt.Sprintf("resolver: %s: %s", f.Kind, f.Reason)
}

// botCheckReasons are the playabilityStatus.reason substrings that
// indicate YouTube wants a fresh origin token rather than a genuinely
// unplayable video — these trigger the single post-generation retry
// spec.md §4.8 step 5e describes. Any other non-OK status is treated as
// an ordinary per-profile failure and the loop moves to the next profile
// (see DESIGN.md Open Question 1).
var botCheckReasons = []string{
	"Sign in to confirm you're not a bot",
	"confirm you're not a bot",
}

func isBotCheck(reason string) bool {
	for _, r := range botCheckReasons {
		if containsFold(reason, r) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	if len(n) == 0 || len(n) > len(h) {
		return len(n) == 0
	}
	toLower := func(rs []rune) []rune {
		out := make([]rune, len(rs))
		for i, r := range rs {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			out[i] = r
		}
		return out
	}
	h, n = toLower(h), toLower(n)
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if h[i+j] != n[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
