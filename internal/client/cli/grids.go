package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	"github.com/yungbote/spacekeeper-backend/internal/client/view"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

var gridFormFlags = []string{"name", "row", "col", "row-span", "col-span", "color"}

func addGridFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "grid name (default: \"Grid <row>-<col>\")")
	f.String("row", "", "top row, zero based")
	f.String("col", "", "left column, zero based")
	f.String("row-span", "", "rows covered")
	f.String("col-span", "", "columns covered")
	f.String("color", "", "display color")
}

func (c *cli) gridsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "grids",
		Aliases: []string{"grid"},
		Short:   "Manage the grids inside a space",
	}
	cmd.AddCommand(c.gridsListCmd(), c.gridsCreateCmd(), c.gridsUpdateCmd(), c.gridsDeleteCmd())
	return cmd
}

func (c *cli) gridsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <space-id>",
		Short: "List the grids of a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spaceID, err := parseID("space", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchGrids(spaceID))
			if err != nil {
				return err
			}
			if err := listErr(st.Grid.Message); err != nil {
				return err
			}
			return c.render(cmd, st.Grid.List, func(vs view.Styles) string {
				return view.GridList(vs, st.Grid.List)
			})
		},
	}
}

func (c *cli) gridsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <space-id>",
		Short: "Add a grid to a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spaceID, err := parseID("space", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			form, err := fillForm(ctx, s, cmd, flows.EntityGrid, gridFormFlags...)
			if err != nil {
				return err
			}
			fields, err := flows.GridFieldsFromForm(form)
			if err != nil {
				return err
			}
			st, err := s.do(ctx, flows.CreateGrid(spaceID, fields))
			if err != nil {
				return err
			}
			return c.renderGridEdit(cmd, st.Grid.EditStatus)
		},
	}
	addGridFormFlags(cmd)
	_ = cmd.MarkFlagRequired("row")
	_ = cmd.MarkFlagRequired("col")
	return cmd
}

func (c *cli) gridsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <grid-id>",
		Short: "Rename, move or resize a grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("grid", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			form, err := fillForm(ctx, s, cmd, flows.EntityGrid, gridFormFlags...)
			if err != nil {
				return err
			}
			fields, err := flows.GridFieldsFromForm(form)
			if err != nil {
				return err
			}
			st, err := s.do(ctx, flows.UpdateGrid(id, fields))
			if err != nil {
				return err
			}
			return c.renderGridEdit(cmd, st.Grid.EditStatus)
		},
	}
	addGridFormFlags(cmd)
	return cmd
}

func (c *cli) gridsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <grid-id>",
		Short: "Delete a grid; its items become unplaced",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("grid", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.DeleteGrid(id))
			if err != nil {
				return err
			}
			return c.renderDelete(cmd, st.Grid.EditStatus)
		},
	}
}

func (c *cli) renderGridEdit(cmd *cobra.Command, es flows.EditStatus) error {
	if err := editErr(es); err != nil {
		return fmt.Errorf("%s grid: %w", es.Kind, err)
	}
	grid, _ := es.Payload.(*types.Grid)
	var grids []*types.Grid
	if grid != nil {
		grids = []*types.Grid{grid}
	}
	return c.render(cmd, grid, func(vs view.Styles) string {
		return view.Status(vs, false, "", es) + "\n" + view.GridList(vs, grids)
	})
}
