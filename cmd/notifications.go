// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arenatv/cli/internal/catalog"
)

var notificationsUnread bool

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"inbox"},
	Short:   "Read reminders about upcoming events",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if _, err := a.ready(ctx); err != nil {
			return err
		}
		notes, err := a.catalog.Notifications(ctx)
		if err != nil {
			return present(a.cfg, err, "loading notifications")
		}
		pterm.Println(fmt.Sprintf("🔔 %d unread", catalog.UnreadCount(notes)))
		rows := make([][]string, 0, len(notes))
		for _, n := range notes {
			if notificationsUnread && n.IsRead {
				continue
			}
			mark := " "
			if !n.IsRead {
				mark = "●"
			}
			rows = append(rows, []string{mark, shorten(n.Title, 40), shorten(n.Message, 50), formatTime(n.CreatedAt), n.ID})
		}
		if len(rows) == 0 {
			pterm.Println("Nothing to show.")
			return nil
		}
		return renderTable([]string{"", "Title", "Message", "Received", "ID"}, rows)
	}),
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if _, err := a.ready(ctx); err != nil {
			return err
		}
		if err := a.catalog.MarkNotificationRead(ctx, args[0]); err != nil {
			return present(a.cfg, err, "updating the notification")
		}
		pterm.Println("✅ Marked as read")
		return nil
	}),
}

func init() {
	notificationsListCmd.Flags().BoolVar(&notificationsUnread, "unread", false, "Only unread notifications")
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}
