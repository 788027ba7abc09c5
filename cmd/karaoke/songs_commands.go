package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
)

func newSongsCommand(ctx *commandContext) *cobra.Command {
	songsCmd := &cobra.Command{
		Use:     "songs",
		Aliases: []string{"song"},
		Short:   "Browse and manage the song catalog",
	}

	songsCmd.AddCommand(newSongsListCommand(ctx))
	songsCmd.AddCommand(newSongsSearchCommand(ctx))
	songsCmd.AddCommand(newSongsAddCommand(ctx))
	songsCmd.AddCommand(newSongsShowCommand(ctx))
	songsCmd.AddCommand(newSongsRemoveCommand(ctx))
	songsCmd.AddCommand(newSongsImportCommand(ctx))

	return songsCmd
}

func printSongs(out io.Writer, songs []api.CatalogSong, caption string) error {
	if len(songs) == 0 {
		fmt.Fprintln(out, "No songs found")
		return nil
	}
	fmt.Fprint(out, renderTable(songColumns, songRows(songs), caption))
	return nil
}

func newSongsListCommand(ctx *commandContext) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog songs by title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Songs(c, limit, offset)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printSongs(out, resp.Songs, fmt.Sprintf("%d song(s)", len(resp.Songs)))
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N songs")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip the first N songs")
	return cmd
}

func newSongsSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		mode          string
		exact         bool
		short         bool
		limit, offset int
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find songs by title, artist, text or id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("search query is empty")
			}
			req := api.SearchSongsRequest{
				Query:      query,
				SearchMode: mode,
				Exact:      exact,
				ResultType: api.ResultTypeFull,
				Limit:      limit,
				Offset:     offset,
			}
			if short {
				req.ResultType = api.ResultTypeShort
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.SearchSongs(c, req)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					caption := fmt.Sprintf("%d match(es) for %q", resp.Total, query)
					if resp.ResultType != "song" {
						return printGroups(out, resp.ResultType, resp.Groups, caption)
					}
					return printSongs(out, resp.Songs, caption)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "text", "Search by title, artist, text or id")
	cmd.Flags().BoolVar(&exact, "exact", false, "Match the whole title or artist")
	cmd.Flags().BoolVar(&short, "short", false, "Group title and artist searches by name with song counts")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N matches")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip the first N matches")
	return cmd
}

func printGroups(out io.Writer, kind string, groups []api.SearchGroup, caption string) error {
	if len(groups) == 0 {
		fmt.Fprintln(out, "No songs found")
		return nil
	}
	header := "Title"
	if kind == "artist" {
		header = "Artist"
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Name, strconv.Itoa(g.Count)})
	}
	fmt.Fprint(out, renderTable([]column{left(header), right("Songs")}, rows, caption))
	return nil
}

func newSongsAddCommand(ctx *commandContext) *cobra.Command {
	var req api.CreateSongRequest
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a song to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.CreateSong(c, req)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					fmt.Fprintf(out, "Added song %d: %s - %s\n", resp.Song.ID, resp.Song.Title, resp.Song.Artist)
					return nil
				})
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&req.Title, "title", "", "Song title")
	flags.StringVar(&req.Artist, "artist", "", "Performing artist")
	flags.IntVar(&req.Duration, "duration", 0, "Length in seconds")
	flags.StringVar(&req.Source, "source", "", "Where the track came from")
	flags.StringVar(&req.Filename, "filename", "", "Media file name")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("artist")
	return cmd
}

func newSongsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one catalog song",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSongIDArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Song(c, id)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					song := resp.Song
					colorize := shouldColorize(out)
					fmt.Fprintln(out, renderSectionHeader(song.Title, colorize))
					fmt.Fprintln(out, renderStatusLine("Artist", statusInfo, song.Artist, colorize))
					fmt.Fprintln(out, renderStatusLine("Length", statusInfo, formatDuration(song.Duration), colorize))
					if song.Source != "" {
						fmt.Fprintln(out, renderStatusLine("Source", statusInfo, song.Source, colorize))
					}
					if song.Filename != "" {
						fmt.Fprintln(out, renderStatusLine("File", statusInfo, song.Filename, colorize))
					}
					plays := fmt.Sprintf("%d", song.Plays)
					if song.LastPlayed != "" {
						plays += " (last " + song.LastPlayed + ")"
					}
					fmt.Fprintln(out, renderStatusLine("Plays", statusInfo, plays, colorize))
					return nil
				})
			})
		},
	}
}

func newSongsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a song from the catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSongIDArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				if err := client.DeleteSong(c, id); err != nil {
					return err
				}
				return ctx.emit(cmd, map[string]int64{"deleted": id}, func(out io.Writer) error {
					fmt.Fprintf(out, "Deleted song %d\n", id)
					return nil
				})
			})
		},
	}
}

func newSongsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import songs from a YAML seed file (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open seed file: %w", err)
				}
				defer file.Close()
				in = file
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.ImportSongs(c, in)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					fmt.Fprintf(out, "Imported %d song(s)\n", len(resp.Songs))
					return nil
				})
			})
		},
	}
}
