package console

import (
	"context"

	"stock-cli/internal/api"
	"stock-cli/internal/logger"
	"stock-cli/internal/model"
)

type (
	Items = Resource[model.Item, model.ItemDraft]
	Lots  = Drawer[model.Lot, model.LotDraft]
)

// ItemEndpoints wires the item controllers to the /items resource.
func ItemEndpoints(c *api.Client) Endpoints[model.Item, model.ItemDraft] {
	return Endpoints[model.Item, model.ItemDraft]{
		Fetch: func(ctx context.Context, s Scope) ([]model.Item, error) {
			return c.Items().List(ctx, s.Filter)
		},
		Create: func(ctx context.Context, _ Scope, d model.ItemDraft) error {
			p, err := d.Payload()
			if err != nil {
				return err
			}
			return c.Items().Create(ctx, p)
		},
		Update: func(ctx context.Context, it model.Item, d model.ItemDraft) error {
			p, err := d.Payload()
			if err != nil {
				return err
			}
			return c.Items().Update(ctx, it.ID, p)
		},
		Delete: func(ctx context.Context, it model.Item) error {
			return c.Items().Delete(ctx, it.ID)
		},
		Empty: func(Scope) model.ItemDraft { return model.ItemDraft{} },
		Seed:  model.NewItemDraft,
		Validate: func(_ Scope, d model.ItemDraft) error {
			_, err := d.Payload()
			return err
		},
	}
}

// LotEndpoints wires the lot controllers to the /lots resource. The scope's
// parent id is the owning item.
func LotEndpoints(c *api.Client) Endpoints[model.Lot, model.LotDraft] {
	return Endpoints[model.Lot, model.LotDraft]{
		Fetch: func(ctx context.Context, s Scope) ([]model.Lot, error) {
			return c.Lots().ListForItem(ctx, s.ParentID)
		},
		Create: func(ctx context.Context, s Scope, d model.LotDraft) error {
			p, err := d.CreatePayload(s.ParentID)
			if err != nil {
				return err
			}
			return c.Lots().Create(ctx, p)
		},
		Update: func(ctx context.Context, l model.Lot, d model.LotDraft) error {
			p, err := d.UpdatePayload()
			if err != nil {
				return err
			}
			return c.Lots().Update(ctx, l.ID, p)
		},
		Delete: func(ctx context.Context, l model.Lot) error {
			return c.Lots().Delete(ctx, l.ID)
		},
		Empty: func(Scope) model.LotDraft { return model.LotDraft{} },
		Seed:  model.NewLotDraft,
		Validate: func(_ Scope, d model.LotDraft) error {
			_, err := d.UpdatePayload()
			return err
		},
	}
}

func NewItems(c *api.Client, log logger.Logger) *Items {
	return NewResource(model.KindItem, ItemEndpoints(c), log)
}

func NewLots(c *api.Client, log logger.Logger) *Lots {
	return NewDrawer(model.KindLot, LotEndpoints(c), log)
}
