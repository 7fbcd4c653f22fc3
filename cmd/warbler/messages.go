package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"warbler/internal/store"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Inspect and moderate messages",
	}
	cmd.AddCommand(newMessagesListCmd(), newMessagesDeleteCmd())
	return cmd
}

func newMessagesListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Dump recent messages and their authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			msgs, err := store.New(db).RecentMessages(cmd.Context(), limit)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Author", "Text", "Published"})
			for _, m := range msgs {
				t.AppendRow(table.Row{m.ID, m.Username, m.Text, time.Unix(m.PubDate, 0).UTC().Format(time.DateTime)})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.TimelineSize, "number of messages to show")
	return cmd
}

func newMessagesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message_id>...",
		Short: "Remove messages by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			st := store.New(db)

			out := cmd.OutOrStdout()
			var failed bool
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Invalid message ID: %s\n", arg)
					failed = true
					continue
				}
				err = st.DeleteMessage(cmd.Context(), id)
				switch {
				case errors.Is(err, store.ErrNotFound):
					fmt.Fprintf(cmd.ErrOrStderr(), "No such message: %d\n", id)
					failed = true
				case err != nil:
					return err
				default:
					fmt.Fprintf(out, "Deleted message: %d\n", id)
				}
			}
			if failed {
				return errors.New("some messages were not deleted")
			}
			return nil
		},
	}
}
