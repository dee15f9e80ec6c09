package cli

import (
	"strconv"
	"strings"

	"stock-cli/internal/calendar"
	"stock-cli/internal/model"

	"github.com/spf13/cobra"
)

type lotRows []model.Lot

func (r lotRows) Header() []string { return []string{"ID", "Number", "Quantity", "Expiry"} }

func (r lotRows) Rows() [][]string {
	out := make([][]string, 0, len(r))
	for _, l := range r {
		out = append(out, []string{
			strconv.FormatInt(l.ID, 10),
			l.Number,
			model.FormatQuantity(l.Quantity),
			l.ExpiryDate.Display(),
		})
	}
	return out
}

// displayExpiry lets scripts pass YYYY-MM-DD as well as DD/MM/YYYY.
func displayExpiry(s string) string {
	if d, err := calendar.ParseISO(strings.TrimSpace(s)); err == nil {
		return d.Display()
	}
	return s
}

func newLotsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lots",
		Short: "List and change the lots of an item",
	}
	cmd.AddCommand(newLotsListCmd(app))
	cmd.AddCommand(newLotsAddCmd(app))
	cmd.AddCommand(newLotsEditCmd(app))
	cmd.AddCommand(newLotsDeleteCmd(app))
	return cmd
}

func newLotsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <item-id>",
		Short: "List the lots of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(model.KindItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			lots, err := c.Lots().ListForItem(cmd.Context(), itemID)
			if err != nil {
				return writeErr(cmd, requestError("list lots", err))
			}
			return writeOut(cmd, app, envelope{Data: lotRows(lots)})
		},
	}
}

func newLotsAddCmd(app *App) *cobra.Command {
	var d model.LotDraft
	cmd := &cobra.Command{
		Use:     "add <item-id>",
		Short:   "Add a lot to an item",
		Args:    cobra.ExactArgs(1),
		Example: `stock lots add 3 --number L-10 --quantity 24 --expiry 31/12/2026`,
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(model.KindItem, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			d.Expiry = displayExpiry(d.Expiry)
			p, err := d.CreatePayload(itemID)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Lots().Create(cmd.Context(), p); err != nil {
				return writeErr(cmd, requestError("add lot", err))
			}
			app.log.Info("lot added", "item_id", itemID, "number", p.Number)
			return writeOut(cmd, app, envelope{
				Data:  p,
				Hints: []string{"stock lots list " + strconv.FormatInt(itemID, 10)},
			})
		},
	}
	cmd.Flags().StringVar(&d.Number, "number", "", "Lot number")
	cmd.Flags().StringVar(&d.Quantity, "quantity", "", "Quantity")
	cmd.Flags().StringVar(&d.Expiry, "expiry", "", "Expiry date (DD/MM/YYYY or YYYY-MM-DD)")
	return cmd
}

func newLotsEditCmd(app *App) *cobra.Command {
	var itemArg, number, quantity, expiry string
	cmd := &cobra.Command{
		Use:   "edit <lot-id> --item <item-id>",
		Short: "Change a lot's number, quantity or expiry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(model.KindLot, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			itemID, err := parseID(model.KindItem, itemArg)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client()
			if err != nil {
				return writeErr(cmd, err)
			}
			lots, err := c.Lots().ListForItem(cmd.Context(), itemID)
			if err != nil {
				return writeErr(cmd, requestError("load lot", err))
			}
			var target *model.Lot
			for i := range lots {
				if lots[i].ID == id {
					target = &lots[i]
					break
				}
			}
			if target == nil {
				return writeErr(cmd, errNotFound(model.KindLot, id))
			}

			d := model.NewLotDraft(*target)
			if cmd.Flags().Changed("number") {
				d.Number = number
			}
			if cmd.Flags().Changed("quantity") {
				d.Quantity = quantity
			}
			if cmd.Flags().Changed("expiry") {
				d.Expiry = displayExpiry(expiry)
			}
			p, err := d.UpdatePayload()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.Lots().Update(cmd.Context(), id, p); err != nil {
				return writeErr(cmd, requestError("save lot", err))
			}
			app.log.Info("lot saved", "id", id)
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": id, "lot": p}})
		},
	}
	cmd.Flags().StringVar(&itemArg, "item", "", "Id of the item the lot belongs to")
	cmd.Flags().StringVar(&number, "number", "", "New lot number")
	cmd.Flags().StringVar(&quantity, "quantity", "", "New quantity")
	cmd.Flags().StringVar(&expiry, "expiry", "", "New expiry date")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newLotsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <lot-id>",
		Short: "Delete a lot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(model.KindLot, args[0])
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
			if err := c.Lots().Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, requestError("delete lot", err))
			}
			app.log.Info("lot deleted", "id", id)
			return writeOut(cmd, app, envelope{Data: map[string]any{"id": id, "deleted": true}})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
