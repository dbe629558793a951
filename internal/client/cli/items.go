package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	"github.com/yungbote/spacekeeper-backend/internal/client/view"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

var itemFormFlags = []string{
	"space-id", "grid-id", "name", "description", "category", "tags",
	"quantity", "reminder-at", "reminder-note", "clear-grid", "clear-reminder",
}

func addItemFormFlags(cmd *cobra.Command, update bool) {
	f := cmd.Flags()
	f.String("space-id", "", "space holding the item")
	f.String("grid-id", "", "grid the item sits in")
	f.String("name", "", "item name")
	f.String("description", "", "item description")
	f.String("category", "", "category")
	f.String("tags", "", "comma separated tags")
	f.String("quantity", "", "how many")
	f.String("reminder-at", "", "reminder time, RFC3339")
	f.String("reminder-note", "", "reminder note")
	if update {
		f.Bool("clear-grid", false, "take the item out of its grid")
		f.Bool("clear-reminder", false, "drop the reminder")
	}
}

func (c *cli) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage items",
	}
	cmd.AddCommand(
		c.itemsListCmd(),
		c.itemsShowCmd(),
		c.itemsCreateCmd(),
		c.itemsUpdateCmd(),
		c.itemsDeleteCmd(),
		c.itemsUploadImageCmd(),
	)
	return cmd
}

func (c *cli) itemsListCmd() *cobra.Command {
	var q api.ItemQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally scoped to a space or grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if q.SpaceID, err = optIDFlag(cmd, "space-id"); err != nil {
				return err
			}
			if q.GridID, err = optIDFlag(cmd, "grid-id"); err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchItems(q))
			if err != nil {
				return err
			}
			if err := listErr(st.Item.Message); err != nil {
				return err
			}
			return c.render(cmd, st.Item.List, func(vs view.Styles) string {
				return view.ItemList(vs, "Items", st.Item.List)
			})
		},
	}
	f := cmd.Flags()
	f.String("space-id", "", "only items in this space")
	f.String("grid-id", "", "only items in this grid")
	f.BoolVar(&q.Unplaced, "unplaced", false, "only items without a grid")
	f.StringVar(&q.Category, "category", "", "only items in this category")
	return cmd
}

func (c *cli) itemsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.FetchItem(id))
			if err != nil {
				return err
			}
			if st.Item.Selected == nil {
				return fmt.Errorf("item %s: %s", id, st.Item.Message)
			}
			return c.render(cmd, st.Item.Selected, func(vs view.Styles) string {
				return view.ItemCard(vs, st.Item.Selected)
			})
		},
	}
}

func (c *cli) itemsCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an item to a space",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editItem(cmd, nil)
		},
	}
	addItemFormFlags(cmd, false)
	_ = cmd.MarkFlagRequired("space-id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *cli) itemsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Edit, move or re-tag an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			return c.editItem(cmd, &id)
		},
	}
	addItemFormFlags(cmd, true)
	return cmd
}

// editItem creates an item when id is nil and updates it otherwise.
func (c *cli) editItem(cmd *cobra.Command, id *uuid.UUID) error {
	ctx := cmd.Context()
	s, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	form, err := fillForm(ctx, s, cmd, flows.EntityItem, itemFormFlags...)
	if err != nil {
		return err
	}
	fields, err := flows.ItemFieldsFromForm(form)
	if err != nil {
		return err
	}
	action := flows.CreateItem(fields)
	if id != nil {
		action = flows.UpdateItem(*id, fields)
	}
	st, err := s.do(ctx, action)
	if err != nil {
		return err
	}
	return c.renderItemEdit(cmd, st.Item.EditStatus)
}

func (c *cli) itemsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.do(ctx, flows.DeleteItem(id))
			if err != nil {
				return err
			}
			return c.renderDelete(cmd, st.Item.EditStatus)
		},
	}
}

func (c *cli) itemsUploadImageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <item-id> <file>",
		Short: "Upload an item photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("item", args[0])
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

			st, err := s.do(ctx, flows.UploadItemImage(id, file))
			if err != nil {
				return err
			}
			return c.renderItemEdit(cmd, st.Item.EditStatus)
		},
	}
}

func (c *cli) renderItemEdit(cmd *cobra.Command, es flows.EditStatus) error {
	if err := editErr(es); err != nil {
		return fmt.Errorf("%s item: %w", es.Kind, err)
	}
	item, _ := es.Payload.(*types.Item)
	return c.render(cmd, item, func(vs view.Styles) string {
		return view.Status(vs, false, "", es) + "\n" + view.ItemCard(vs, item)
	})
}
