package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	"github.com/yungbote/spacekeeper-backend/internal/client/view"
)

func (c *cli) searchCmd() *cobra.Command {
	var q api.SearchQuery
	cmd := &cobra.Command{
		Use:   "search [text...]",
		Short: "Search items by name, description, category or tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			q.Text = strings.TrimSpace(strings.Join(args, " "))
			var err error
			if q.SpaceID, err = optIDFlag(cmd, "space-id"); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.RunSearch(q))
			if err != nil {
				return err
			}
			if err := listErr(st.Search.Message); err != nil {
				return err
			}
			title := "Results"
			if q.Text != "" {
				title = "Results for \"" + q.Text + "\""
			}
			return c.render(cmd, st.Search.Results, func(vs view.Styles) string {
				return view.ItemList(vs, title, st.Search.Results)
			})
		},
	}
	f := cmd.Flags()
	f.String("space-id", "", "only search this space")
	f.StringVar(&q.Category, "category", "", "only this category")
	f.IntVar(&q.Limit, "limit", 0, "maximum results (server default when 0)")
	return cmd
}

func (c *cli) remindersCmd() *cobra.Command {
	var within time.Duration
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List overdue and upcoming item reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchReminders(within))
			if err != nil {
				return err
			}
			if err := listErr(st.Reminder.Message); err != nil {
				return err
			}
			return c.render(cmd, st.Reminder.Items, func(vs view.Styles) string {
				return view.ItemList(vs, "Reminders", st.Reminder.Items)
			})
		},
	}
	cmd.Flags().DurationVar(&within, "within", 7*24*time.Hour, "look-ahead window")
	return cmd
}
