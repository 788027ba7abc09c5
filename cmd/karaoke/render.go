package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"karaoke/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 16

var titleCaser = cases.Title(language.Und)

// emit prints v as indented JSON under --json and calls render otherwise.
func (c *commandContext) emit(cmd *cobra.Command, v any, render func(out io.Writer) error) error {
	out := cmd.OutOrStdout()
	if c.jsonOutput() {
		enc := jsonEncoder(out)
		return enc.Encode(v)
	}
	return render(out)
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", message)
	if !colorize {
		return line
	}
	switch kind {
	case statusOK:
		return ansiGreen + line + ansiReset
	case statusWarn:
		return ansiYellow + line + ansiReset
	default:
		return line
	}
}

func renderSectionHeader(title string, colorize bool) string {
	line := "== " + titleCaser.String(strings.TrimSpace(title)) + " =="
	if colorize {
		return ansiBlue + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// methodLabel turns "atFront" into "At Front" for confirmations.
func methodLabel(method string) string {
	var b strings.Builder
	for i, r := range method {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return titleCaser.String(b.String())
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatUint(n, 10) + " B"
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func songLabel(song api.Song) string {
	switch {
	case song.Title != "" && song.Artist != "":
		return song.Title + " - " + song.Artist
	case song.Title != "":
		return song.Title
	default:
		return "song " + strconv.FormatInt(song.SongID, 10)
	}
}

func queueItemRows(items []api.QueueItem) [][]string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			api.FormatPosition(item.Position),
			strconv.FormatInt(item.Song.SongID, 10),
			item.Song.Title,
			item.Song.Artist,
			formatDuration(item.Song.Duration),
		})
	}
	return rows
}

var queueItemColumns = []column{
	right("#"), right("Position"), right("Song"), left("Title"), left("Artist"), right("Length"),
}

func songRows(songs []api.CatalogSong) [][]string {
	rows := make([][]string, 0, len(songs))
	for _, song := range songs {
		last := song.LastPlayed
		if last == "" {
			last = "never"
		}
		rows = append(rows, []string{
			strconv.FormatInt(song.ID, 10),
			song.Title,
			song.Artist,
			formatDuration(song.Duration),
			strconv.Itoa(song.Plays),
			last,
		})
	}
	return rows
}

var songColumns = []column{
	right("ID"), left("Title"), left("Artist"), right("Length"), right("Plays"), left("Last Played"),
}
