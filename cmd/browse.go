// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"arenatv/cli/internal/catalog"
	"arenatv/cli/internal/model"
)

var (
	teamsSport   string
	eventsSport  string
	eventsStatus string
)

var sportsCmd = &cobra.Command{
	Use:   "sports",
	Short: "List sports",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		sports, err := a.catalog.Sports(ctx)
		if err != nil {
			return present(a.cfg, err, "loading sports")
		}
		if len(sports) == 0 {
			pterm.Println("No sports yet.")
			return nil
		}
		rows := make([][]string, 0, len(sports))
		for _, s := range sports {
			rows = append(rows, []string{s.Name, shorten(deref(s.Description), 50), s.ID})
		}
		return renderTable([]string{"Sport", "Description", "ID"}, rows)
	}),
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List teams, optionally for one sport",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		teams, err := a.catalog.Teams(ctx, teamsSport)
		if err != nil {
			return present(a.cfg, err, "loading teams")
		}
		if len(teams) == 0 {
			pterm.Println("No teams found.")
			return nil
		}
		rows := make([][]string, 0, len(teams))
		for _, t := range teams {
			sport := ""
			if t.Sport != nil {
				sport = t.Sport.Name
			}
			rows = append(rows, []string{t.Name, sport, t.ID})
		}
		return renderTable([]string{"Team", "Sport", "ID"}, rows)
	}),
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events by start time",
	Long: `The events command lists broadcasts ordered by start time. Filter by sport id
and by status (upcoming, live or completed).`,
	Args: cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		events, err := a.catalog.Events(ctx, catalog.EventQuery{
			SportID: eventsSport,
			Status:  eventsStatus,
		})
		if err != nil {
			return present(a.cfg, err, "loading events")
		}
		if len(events) == 0 {
			pterm.Println("No events found.")
			return nil
		}
		rows := make([][]string, 0, len(events))
		for _, e := range events {
			sport := ""
			if e.Sport != nil {
				sport = e.Sport.Name
			}
			rows = append(rows, []string{shorten(e.Title, 40), sport, formatTime(e.StartTime), statusLabel(e.Status), e.ID})
		}
		return renderTable([]string{"Event", "Sport", "Starts", "Status", "ID"}, rows)
	}),
}

var eventCmd = &cobra.Command{
	Use:   "event <event-id>",
	Short: "Show one event",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		e, err := a.catalog.Event(ctx, args[0])
		if err != nil {
			return present(a.cfg, err, "loading the event")
		}
		var b strings.Builder
		b.WriteString("Status:  " + statusLabel(e.Status) + "\n")
		if e.Sport != nil {
			b.WriteString("Sport:   " + e.Sport.Name + "\n")
		}
		b.WriteString("Starts:  " + formatTime(e.StartTime) + "\n")
		if e.EndTime != nil {
			b.WriteString("Ends:    " + formatTime(*e.EndTime) + "\n")
		}
		if d := deref(e.Description); d != "" {
			b.WriteString("\n" + d + "\n")
		}
		if e.StreamURL != nil {
			b.WriteString("\nWatch with: arenatv watch " + e.ID)
		}
		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(e.Title)).
			Println(strings.TrimRight(b.String(), "\n"))
		return nil
	}),
}

func statusLabel(s model.EventStatus) string {
	switch s {
	case model.EventLive:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("● LIVE")
	case model.EventUpcoming:
		return pterm.NewStyle(pterm.FgCyan).Sprint("upcoming")
	case model.EventCompleted:
		return pterm.NewStyle(pterm.FgGray).Sprint("completed")
	}
	return string(s)
}

func init() {
	teamsCmd.Flags().StringVar(&teamsSport, "sport", "", "Only teams of this sport id")
	eventsCmd.Flags().StringVar(&eventsSport, "sport", "", "Only events of this sport id")
	eventsCmd.Flags().StringVar(&eventsStatus, "status", "", "Only events with this status (upcoming, live, completed)")
	rootCmd.AddCommand(sportsCmd, teamsCmd, eventsCmd, eventCmd)
}
