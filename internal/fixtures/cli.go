package fixtures

import "os"

// ShowHelp prints usage information for the fixture tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`tops fixture generator
======================

Writes a synthetic client library for exercising tops end to end.

USAGE:
    tops-fixtures [OPTIONS]

OPTIONS:
    -dir string       Output directory (default "fixtures")
    -beatmaps int     Number of beatmaps (default 50)
    -scores int       Plays per beatmap (default 3)
    -workers int      Concurrent content generators (default: 2 x CPU cores)
    -player string    Player name (default "player")
    -help             Show this help message

The directory then holds osu!.db, scores.db and Songs/. Point tops at it:

    TOPS_SCORES_PATH=fixtures/scores.db \
    TOPS_LISTING_PATH=fixtures/osu!.db \
    TOPS_SONGS_DIR=fixtures/Songs tops
`)
}
