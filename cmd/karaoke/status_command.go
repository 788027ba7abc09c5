package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and queue overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(c context.Context, client *api.Client) error {
				status, err := client.Status(c)
				if err != nil {
					return err
				}
				return ctx.emit(cmd, status, func(out io.Writer) error {
					renderStatus(out, status, shouldColorize(out))
					return nil
				})
			})
		},
	}
}

func renderStatus(out io.Writer, status *api.DaemonStatus, colorize bool) {
	line := func(label string, kind statusKind, message string) {
		fmt.Fprintln(out, renderStatusLine(label, kind, message, colorize))
	}

	fmt.Fprintln(out, renderSectionHeader("daemon", colorize))
	if status.Running {
		line("State", statusOK, "running (pid "+strconv.Itoa(status.PID)+")")
	} else {
		line("State", statusWarn, "stopped")
	}
	if status.StartedAt != "" {
		line("Started", statusInfo, status.StartedAt)
	}
	line("Subscribers", statusInfo, strconv.Itoa(status.Subscribers))

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("storage", colorize))
	line("Driver", statusInfo, status.StorageDriver)
	if status.DatabasePath != "" {
		line("Database", statusInfo, status.DatabasePath)
	}
	line("Data dir", statusInfo, status.DataDir)
	if status.DiskTotalBytes > 0 {
		kind := statusOK
		if status.DiskFreeBytes < status.DiskTotalBytes/20 {
			kind = statusWarn
		}
		line("Disk free", kind, formatBytes(status.DiskFreeBytes)+" of "+formatBytes(status.DiskTotalBytes))
	}
	line("Songs", statusInfo, strconv.Itoa(status.Songs))

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSectionHeader("queues", colorize))
	if len(status.Queues) == 0 {
		line("Queues", statusInfo, "all empty")
		return
	}
	for _, q := range status.Queues {
		line(q.QueueID, statusInfo, fmt.Sprintf("%d song(s)", q.Items))
	}
}
