package cli

import (
	"fmt"
	"strconv"
	"strings"

	"stock-cli/internal/model"

	"github.com/spf13/cobra"
)

type itemRows []model.Item

func (r itemRows) Header() []string { return []string{"ID", "Name", "Price"} }

func (r itemRows) Rows() [][]string {
	out := make([][]string, 0, len(r))
	for _, it := range r {
		out = append(out, []string{strconv.FormatInt(it.ID, 10), it.Name, model.FormatPrice(it.Price)})
	}
	return out
}

func parseID(kind model.Kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", kind, s)
	}
	return id, nil
}

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and change items",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsEditCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	return cmd
}

func newItemsListCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := c.Items().List(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, requestError("list items", err))
			}
			return writeOut(cmd, app, envelope{Data: itemRows(items)})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Only items whose name contains this text")
	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var d model.ItemDraft
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add an item",
		Args:    cobra.NoArgs,
		Example: `stock items add --name "Coca-Cola Lata" --price 5,99`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := d.Payload()
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Items().Create(cmd.Context(), p); err != nil {
				return writeErr(cmd, requestError("add item", err))
			}
			app.log.Info("item added", "name", p.Name)
			return writeOut(cmd, app, envelope{
				Data:  p,
				Hints: []string{fmt.Sprintf("stock items list --name %q", p.Name)},
			})
		},
	}
	cmd.Flags().StringVar(&d.Name, "name", "", "Item name")
	cmd.Flags().StringVar(&d.Price, "price", "", "Unit price (decimal point or comma)")
	return cmd
}

func newItemsEditCmd(app *App) *cobra.Command {
	var name, price string
	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Change an item's name or price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(model.KindItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := c.Items().List(cmd.Context(), "")
			if err != nil {
				return writeErr(cmd, requestError("load item", err))
			}
			var target *model.Item
			for i := range items {
				if items[i].ID == id {
					target = &items[i]
					break
				}
			}
			if target == nil {
				return writeErr(cmd, errNotFound(model.KindItem, id))
			}

			d := model.NewItemDraft(*target)
			if cmd.Flags().Changed("name") {
				d.Name = name
			}
			if cmd.Flags().Changed("price") {
				d.Price = price
			}
			p, err := d.Payload()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Items().Update(cmd.Context(), id, p); err != nil {
				return writeErr(cmd, requestError("save item", err))
			}
			app.log.Info("item saved", "id", id)
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": id, "name": p.Name, "price": p.Price}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&price, "price", "", "New unit price")
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(model.KindItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				return writeErr(cmd, errNotConfirmed)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Items().Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, requestError("delete item", err))
			}
			app.log.Info("item deleted", "id", id)
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": id, "deleted": true}})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
