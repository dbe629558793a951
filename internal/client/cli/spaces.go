package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	"github.com/yungbote/spacekeeper-backend/internal/client/view"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

var spaceFormFlags = []string{"name", "description", "rows", "cols"}

func addSpaceFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "space name")
	f.String("description", "", "space description")
	f.String("rows", "", "layout rows")
	f.String("cols", "", "layout columns")
}

func (c *cli) spacesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "spaces",
		Aliases: []string{"space"},
		Short:   "Manage spaces",
	}
	cmd.AddCommand(
		c.spacesListCmd(),
		c.spacesShowCmd(),
		c.spacesCreateCmd(),
		c.spacesUpdateCmd(),
		c.spacesDeleteCmd(),
		c.spacesUploadImageCmd(),
	)
	return cmd
}

func (c *cli) spacesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your spaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchSpaces())
			if err != nil {
				return err
			}
			if err := listErr(st.Space.Message); err != nil {
				return err
			}
			return c.render(cmd, st.Space.List, func(vs view.Styles) string {
				return view.SpaceList(vs, st.Space.List)
			})
		},
	}
}

func (c *cli) spacesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <space-id>",
		Short: "Show a space and its grid layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("space", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchSpace(id))
			if err != nil {
				return err
			}
			if st.Space.Selected == nil {
				return fmt.Errorf("space %s: %s", id, st.Space.Message)
			}
			detail := flows.SpaceDetail{Space: st.Space.Selected, Grids: st.Space.SelectedGrids}
			return c.render(cmd, spaceDetailView(detail), func(vs view.Styles) string {
				return view.SpaceCard(vs, detail.Space, detail.Grids)
			})
		},
	}
}

type spaceDetailJSON struct {
	Space *types.Space  `json:"space"`
	Grids []*types.Grid `json:"grids"`
}

func spaceDetailView(d flows.SpaceDetail) spaceDetailJSON {
	return spaceDetailJSON{Space: d.Space, Grids: d.Grids}
}

func (c *cli) spacesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			form, err := fillForm(ctx, s, cmd, flows.EntitySpace, spaceFormFlags...)
			if err != nil {
				return err
			}
			fields, err := flows.SpaceFieldsFromForm(form)
			if err != nil {
				return err
			}
			st, err := s.do(ctx, flows.CreateSpace(fields))
			if err != nil {
				return err
			}
			return c.renderSpaceEdit(cmd, st.Space.EditStatus)
		},
	}
	addSpaceFormFlags(cmd)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) spacesUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <space-id>",
		Short: "Update a space",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("space", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			form, err := fillForm(ctx, s, cmd, flows.EntitySpace, spaceFormFlags...)
			if err != nil {
				return err
			}
			fields, err := flows.SpaceFieldsFromForm(form)
			if err != nil {
				return err
			}
			st, err := s.do(ctx, flows.UpdateSpace(id, fields))
			if err != nil {
				return err
			}
			return c.renderSpaceEdit(cmd, st.Space.EditStatus)
		},
	}
	addSpaceFormFlags(cmd)
	return cmd
}

func (c *cli) spacesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <space-id>",
		Short: "Delete a space with its grids and items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("space", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.DeleteSpace(id))
			if err != nil {
				return err
			}
			return c.renderDelete(cmd, st.Space.EditStatus)
		},
	}
}

func (c *cli) spacesUploadImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <space-id> <file>",
		Short: "Upload a space photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("space", args[0])
			if err != nil {
				return err
			}
			file, closeFile, err := openUpload(args[1])
			if err != nil {
				return err
			}
			defer closeFile()

			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.UploadSpaceImage(id, file))
			if err != nil {
				return err
			}
			return c.renderSpaceEdit(cmd, st.Space.EditStatus)
		},
	}
}

func (c *cli) renderSpaceEdit(cmd *cobra.Command, es flows.EditStatus) error {
	if err := editErr(es); err != nil {
		return fmt.Errorf("%s space: %w", es.Kind, err)
	}
	space, _ := es.Payload.(*types.Space)
	return c.render(cmd, space, func(vs view.Styles) string {
		return view.Status(vs, false, "", es) + "\n" + view.SpaceCard(vs, space, nil)
	})
}

type deleteJSON struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id,omitempty"`
}

func (c *cli) renderDelete(cmd *cobra.Command, es flows.EditStatus) error {
	if err := editErr(es); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	out := deleteJSON{Deleted: true}
	if es.Payload != nil {
		out.ID = fmt.Sprint(es.Payload)
	}
	return c.render(cmd, out, func(vs view.Styles) string {
		return view.Status(vs, false, "", es)
	})
}

func openUpload(path string) (api.File, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return api.File{}, nil, fmt.Errorf("open image: %w", err)
	}
	return api.File{Name: filepath.Base(path), Reader: f}, func() { _ = f.Close() }, nil
}
