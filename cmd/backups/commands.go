package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/mdwidget/internal/backup"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored backups, newest first",
		Args:  cobra.NoArgs,
		RunE: withKV(func(cmd *cobra.Command, _ []string, kv *backup.SQLiteKV) error {
			return runList(cmd.OutOrStdout(), kv, time.Now())
		}),
	}
}

func runList(w io.Writer, kv *backup.SQLiteKV, now time.Time) error {
	entries, err := kv.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No backups"))
		return nil
	}

	width := len("KEY")
	for _, e := range entries {
		width = max(width, len(e.Key))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s  %10s  %s", width, "KEY", "SIZE", "UPDATED")))
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %10s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-*s", width, e.Key)),
			humanize.Bytes(uint64(e.Size)),
			humanize.RelTime(e.UpdatedAt, now, "ago", "from now"))
	}
	return nil
}

func newShowCommand() *cobra.Command {
	var render bool
	var style string
	cmd := &cobra.Command{
		Use:   "show KEY",
		Short: "Print the content of one backup",
		Args:  cobra.ExactArgs(1),
		RunE: withKV(func(cmd *cobra.Command, args []string, kv *backup.SQLiteKV) error {
			return runShow(cmd.OutOrStdout(), kv, args[0], render, style)
		}),
	}
	cmd.Flags().BoolVarP(&render, "render", "r", false, "Render the markdown for the terminal")
	cmd.Flags().StringVar(&style, "style", "dark", "Glamour style used with --render")
	return cmd
}

func runShow(w io.Writer, kv *backup.SQLiteKV, key string, render bool, style string) error {
	rec, ok := backup.NewStore(kv).Load(key)
	if !ok {
		return fmt.Errorf("no backup for %q", key)
	}

	fmt.Fprintln(w, headerStyle.Render(key))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("saved %s, cursor %d:%d, %d characters",
		rec.Version.UTC().Format(time.RFC3339), rec.Cursor.Line, rec.Cursor.Ch, len([]rune(rec.Content)))))
	fmt.Fprintln(w)

	if !render {
		_, err := io.WriteString(w, rec.Content)
		if err == nil && !strings.HasSuffix(rec.Content, "\n") {
			_, err = io.WriteString(w, "\n")
		}
		return err
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(rec.Content)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY...",
		Short: "Delete backups by key",
		Args:  cobra.MinimumNArgs(1),
		RunE: withKV(func(cmd *cobra.Command, args []string, kv *backup.SQLiteKV) error {
			return runDelete(cmd.OutOrStdout(), kv, args)
		}),
	}
}

func runDelete(w io.Writer, kv *backup.SQLiteKV, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := kv.Delete(key); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Deleted %s\n", keyStyle.Render(key))
	}
	return errors.Join(errs...)
}

func newPruneCommand() *cobra.Command {
	var olderThan time.Duration
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete backups not written for a while",
		Args:  cobra.NoArgs,
		RunE: withKV(func(cmd *cobra.Command, _ []string, kv *backup.SQLiteKV) error {
			return runPrune(cmd.OutOrStdout(), kv, time.Now().Add(-olderThan), dryRun)
		}),
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Minimum age of pruned backups")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only print what would be deleted")
	return cmd
}

func runPrune(w io.Writer, kv *backup.SQLiteKV, cutoff time.Time, dryRun bool) error {
	entries, err := kv.Entries()
	if err != nil {
		return err
	}

	var stale []string
	for _, e := range entries {
		if e.UpdatedAt.Before(cutoff) {
			stale = append(stale, e.Key)
		}
	}
	if len(stale) == 0 {
		fmt.Fprintln(w, dimStyle.Render("Nothing to prune"))
		return nil
	}
	if dryRun {
		for _, key := range stale {
			fmt.Fprintf(w, "Would delete %s\n", keyStyle.Render(key))
		}
		return nil
	}
	return runDelete(w, kv, stale)
}
