package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
)

const defaultQueueID = "main"

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var queueID string

	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and reorder a room queue",
	}
	queueCmd.PersistentFlags().StringVarP(&queueID, "queue", "q", defaultQueueID, "Queue (room) identifier")
	qid := func() string { return strings.TrimSpace(queueID) }

	queueCmd.AddCommand(newQueueListCommand(ctx, qid))
	queueCmd.AddCommand(newQueueAddCommand(ctx, qid))
	queueCmd.AddCommand(newQueueMoveCommand(ctx, qid))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx, qid))
	queueCmd.AddCommand(newQueuePeekCommand(ctx, qid))
	queueCmd.AddCommand(newQueueDequeueCommand(ctx, qid))
	queueCmd.AddCommand(newQueueClearCommand(ctx, qid))
	queueCmd.AddCommand(newQueueRenumberCommand(ctx, qid))
	queueCmd.AddCommand(newQueuePlayingCommand(ctx, qid))
	queueCmd.AddCommand(newQueueNextCommand(ctx, qid))
	queueCmd.AddCommand(newQueueSkipCommand(ctx, qid))

	return queueCmd
}

func parsePositionArg(value string) (float64, error) {
	position, err := api.ParsePosition(value)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q", value)
	}
	return position, nil
}

func parseSongIDArg(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid song id %q", value)
	}
	return id, nil
}

func printItems(out io.Writer, queueID string, items []api.QueueItem) error {
	if len(items) == 0 {
		fmt.Fprintf(out, "Queue %s is empty\n", queueID)
		return nil
	}
	caption := fmt.Sprintf("%s: %d song(s)", queueID, len(items))
	fmt.Fprint(out, renderTable(queueItemColumns, queueItemRows(items), caption))
	return nil
}

func printItem(out io.Writer, verb string, item api.QueueItem) error {
	fmt.Fprintf(out, "%s %s at position %s\n", verb, songLabel(item.Song), api.FormatPosition(item.Position))
	return nil
}

func newQueueListCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued songs in play order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Items(c, queueID(), limit)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printItems(out, resp.QueueID, resp.Items)
				})
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most N songs (0 = all)")
	return cmd
}

func newQueueAddCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	var (
		front bool
		after string
	)
	cmd := &cobra.Command{
		Use:   "add <song-id>",
		Short: "Enqueue a song at the end, the front, or after a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			songID, err := parseSongIDArg(args[0])
			if err != nil {
				return err
			}
			req := api.EnqueueRequest{Method: "atEnd", SongID: songID}
			switch {
			case front && after != "":
				return errors.New("--front and --after are mutually exclusive")
			case front:
				req.Method = "atFront"
			case after != "":
				position, err := parsePositionArg(after)
				if err != nil {
					return err
				}
				req.Method = "afterItem"
				req.AfterPosition = &position
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Enqueue(c, queueID(), req)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printItem(out, "Queued ("+methodLabel(req.Method)+")", resp.Item)
				})
			})
		},
	}
	cmd.Flags().BoolVar(&front, "front", false, "Put the song at the front of the queue")
	cmd.Flags().StringVar(&after, "after", "", "Put the song right after this position")
	return cmd
}

var moveMethods = []string{"up", "down", "atFront", "atEnd", "afterItem", "to"}

func newQueueMoveCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	var (
		after string
		to    string
	)
	cmd := &cobra.Command{
		Use:   "move <position> <" + strings.Join(moveMethods, "|") + ">",
		Short: "Relocate a queued song",
		Long: "Relocate the song at <position>. afterItem needs --after, to needs --to.\n" +
			"Moves that would not change the order are accepted and leave the queue untouched.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parsePositionArg(args[0])
			if err != nil {
				return err
			}
			req := api.MoveRequest{Method: args[1]}
			if after != "" {
				p, err := parsePositionArg(after)
				if err != nil {
					return err
				}
				req.AfterPosition = &p
			}
			if to != "" {
				p, err := parsePositionArg(to)
				if err != nil {
					return err
				}
				req.NewPosition = &p
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Move(c, queueID(), position, req)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printItem(out, "Moved ("+methodLabel(req.Method)+")", resp.Item)
				})
			})
		},
	}
	cmd.Flags().StringVar(&after, "after", "", "Target position for afterItem")
	cmd.Flags().StringVar(&to, "to", "", "Exact new position for to")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <position>",
		Aliases: []string{"rm"},
		Short:   "Remove the song at a position",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := parsePositionArg(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Remove(c, queueID(), position)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printItem(out, "Removed", resp.Item)
				})
			})
		},
	}
}

func newQueuePeekCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "peek",
		Short: "Show the next song without removing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Peek(c, queueID())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					if resp == nil {
						fmt.Fprintf(out, "Queue %s is empty\n", queueID())
						return nil
					}
					return printItem(out, "Next up:", resp.Item)
				})
			})
		},
	}
}

func newQueueDequeueCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "dequeue",
		Short: "Remove and show the next song",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Dequeue(c, queueID())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					if resp == nil {
						fmt.Fprintf(out, "Queue %s is empty\n", queueID())
						return nil
					}
					return printItem(out, "Dequeued", resp.Item)
				})
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every song from the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Clear(c, queueID())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					fmt.Fprintf(out, "Cleared %d song(s) from %s\n", resp.Removed, queueID())
					return nil
				})
			})
		},
	}
}

func newQueueRenumberCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "renumber",
		Short: "Rewrite positions as 1..n keeping the order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Renumber(c, queueID())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printItems(out, resp.QueueID, resp.Items)
				})
			})
		},
	}
}

func printPlaying(out io.Writer, queueID string, playing *api.Playing) error {
	if playing == nil {
		fmt.Fprintf(out, "Nothing playing in %s\n", queueID)
		return nil
	}
	fmt.Fprintf(out, "Now playing in %s: %s\n", queueID, songLabel(playing.Song))
	return nil
}

func newQueuePlayingCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	var (
		set   string
		clear bool
	)
	cmd := &cobra.Command{
		Use:   "playing",
		Short: "Show, set or clear the now-playing song",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if set != "" && clear {
				return errors.New("--set and --clear are mutually exclusive")
			}
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				var (
					resp *api.PlayingResponse
					err  error
				)
				switch {
				case clear:
					if err := client.ClearPlaying(c, queueID()); err != nil {
						return err
					}
					resp = &api.PlayingResponse{}
				case set != "":
					songID, perr := parseSongIDArg(set)
					if perr != nil {
						return perr
					}
					resp, err = client.SetPlaying(c, queueID(), songID)
				default:
					resp, err = client.Playing(c, queueID())
				}
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printPlaying(out, queueID(), resp.Playing)
				})
			})
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "Mark this song id as playing")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the now-playing song")
	return cmd
}

func newQueueNextCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Dequeue the next song and mark it as playing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.PlayNext(c, queueID())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					return printPlaying(out, queueID(), resp.Playing)
				})
			})
		},
	}
}

func newQueueSkipCommand(ctx *commandContext, queueID func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Tell the room's players to skip the current song",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				resp, err := client.Skip(c, queueID())
				if err != nil {
					return err
				}
				return ctx.emit(cmd, resp, func(out io.Writer) error {
					if resp.Playing == nil {
						fmt.Fprintf(out, "Skip sent to %s (nothing playing)\n", queueID())
						return nil
					}
					fmt.Fprintf(out, "Skipped %s in %s\n", songLabel(resp.Playing.Song), queueID())
					return nil
				})
			})
		},
	}
}
