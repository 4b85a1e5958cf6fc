package formats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func audioFormat(itag int, bitrate int, codec string) Format {
	return Format{Itag: itag, Bitrate: bitrate, Codecs: []string{codec}, HasAudio: true}
}

func TestSelectPlayback_PrefersOpusBonus(t *testing.T) {
	candidates := []Format{
		audioFormat(140, 128000, "mp4a.40.2"),
		audioFormat(251, 120000, "opus"),
	}
	got, ok := SelectPlayback(candidates, QualityAuto, false)
	require.True(t, ok)
	require.Equal(t, 251, got.Itag, "opus bonus should outweigh the small bitrate gap")
}

func TestSelectPlayback_MeteredCapsFactor(t *testing.T) {
	candidates := []Format{
		audioFormat(140, 220000, "mp4a.40.2"),
		audioFormat(251, 200000, "opus"),
	}

	gotUnmetered, ok := SelectPlayback(candidates, QualityAuto, false)
	require.True(t, ok)
	require.Equal(t, 140, gotUnmetered.Itag, "at factor 1.0 the bitrate gap outweighs the opus bonus")

	gotMetered, ok := SelectPlayback(candidates, QualityMax, true)
	require.True(t, ok)
	require.Equal(t, 251, gotMetered.Itag, "capping quality-max's factor at 0.5 shrinks the bitrate gap below the opus bonus")
}

func TestScore_MeteredOverridesEvenBelowHalfFactor(t *testing.T) {
	f := audioFormat(139, 100000, "mp4a.40.2")
	require.Equal(t, 0.3*100000, score(f, QualityLow, false))
	require.Equal(t, 0.5*100000, score(f, QualityLow, true), "metered overrides the factor to 0.5 unconditionally, even when the requested quality's factor was already below 0.5")
}

func TestSelectPlayback_ExcludesVideoAndLive(t *testing.T) {
	candidates := []Format{
		{Itag: 1, Bitrate: 999999, HasAudio: true, HasVideo: true},
		{Itag: 2, Bitrate: 999999, HasAudio: true, ThisIsLive: true},
		audioFormat(3, 64000, "mp4a.40.2"),
	}
	got, ok := SelectPlayback(candidates, QualityAuto, false)
	require.True(t, ok)
	require.Equal(t, 3, got.Itag)
}

func TestSelectPlayback_NoAudioCandidates(t *testing.T) {
	_, ok := SelectPlayback([]Format{{Itag: 1, HasVideo: true}}, QualityAuto, false)
	require.False(t, ok)
}

func TestSelectDownload_OpusFirstThenAAC(t *testing.T) {
	candidates := []Format{
		audioFormat(140, 256000, "mp4a.40.2"),
		audioFormat(251, 96000, "opus"),
	}
	got, ok := SelectDownload(candidates)
	require.True(t, ok)
	require.Equal(t, 251, got.Itag, "download mode is opus-first regardless of bitrate")
}

func TestSelectDownload_AACFallbackByBitrate(t *testing.T) {
	candidates := []Format{
		audioFormat(139, 48000, "mp4a.40.2"),
		audioFormat(140, 128000, "mp4a.40.2"),
	}
	got, ok := SelectDownload(candidates)
	require.True(t, ok)
	require.Equal(t, 140, got.Itag)
}

func TestSelectDownload_IgnoresMetered(t *testing.T) {
	// SelectDownload takes no metered argument at all — this just
	// documents that download selection has no such knob, per
	// DESIGN.md Open Question 2.
	candidates := []Format{audioFormat(251, 96000, "opus")}
	got, ok := SelectDownload(candidates)
	require.True(t, ok)
	require.Equal(t, 251, got.Itag)
}

func TestIsOpus(t *testing.T) {
	require.True(t, isOpus(Format{Codecs: []string{"opus"}}))
	require.False(t, isOpus(Format{Codecs: []string{"mp4a.40.2"}}))
}
