// Command ytmresolve-demo is a thin operational entrypoint exercising
// the public Resolver operations, replacing the teacher's cmd/ytv1
// download CLI (whose muxing/transcoding scope this module dropped; see
// DESIGN.md).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ytmresolve/core/config"
	"github.com/ytmresolve/core/internal/formats"
	"github.com/ytmresolve/core/log"

	"github.com/ytmresolve/core"
)

const (
	exitCodeSuccess        = 0
	exitCodeInvalidInput   = 2
	exitCodeResolveFailed  = 4
)

func main() {
	var (
		videoID    = flag.String("video", "", "video id to resolve")
		quality    = flag.String("quality", "auto", "playback quality: low|medium|high|max|auto")
		metered    = flag.Bool("metered", false, "prefer lower-bitrate formats for metered connections")
		download   = flag.Bool("download", false, "resolve a download-mode stream instead of playback")
		lyrics     = flag.Bool("lyrics", false, "resolve lyrics instead of a stream")
		title      = flag.String("title", "", "track title, required with -lyrics")
		artist     = flag.String("artist", "", "track artist, required with -lyrics")
		cacheDir   = flag.String("cache-dir", "", "persistent stream/token/lyrics cache directory (defaults to in-memory)")
	)
	flag.Parse()

	if *videoID == "" {
		fmt.Fprintln(os.Stderr, "usage: ytmresolve-demo -video <id> [-quality q] [-metered] [-download] [-lyrics -title t -artist a]")
		os.Exit(exitCodeInvalidInput)
	}

	logger := log.New(os.Stderr)
	res, err := ytmresolve.New(config.Config{
		StreamCacheDir: *cacheDir,
		Logger:         logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(exitCodeResolveFailed)
	}
	defer res.Close()

	ctx := context.Background()

	if *lyrics {
		if *title == "" || *artist == "" {
			fmt.Fprintln(os.Stderr, "-lyrics requires -title and -artist")
			os.Exit(exitCodeInvalidInput)
		}
		rec, err := res.ResolveLyrics(ctx, *videoID, *title, *artist, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolveLyrics failed: %v\n", err)
			os.Exit(exitCodeResolveFailed)
		}
		fmt.Printf("provider=%s synced=%v lines=%d\n", rec.Provider, rec.IsTimed, len(rec.Synced))
		os.Exit(exitCodeSuccess)
	}

	var resErr error

	if *download {
		rec, err := res.ResolveDownloadStream(ctx, *videoID)
		if err != nil {
			resErr = err
		} else {
			fmt.Printf("url=%s fetchedVia=%s expiresAt=%s\n", rec.URL, rec.FetchedVia, rec.ExpiresAt)
		}
	} else {
		rec, err := res.ResolveStream(ctx, *videoID, formats.Quality(*quality), *metered)
		if err != nil {
			resErr = err
		} else {
			fmt.Printf("url=%s fetchedVia=%s expiresAt=%s\n", rec.URL, rec.FetchedVia, rec.ExpiresAt)
		}
	}

	if resErr != nil {
		fmt.Fprintf(os.Stderr, "resolve failed: %v\n", resErr)
		os.Exit(exitCodeResolveFailed)
	}
}
