package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"stock-cli/internal/calendar"

	"github.com/shopspring/decimal"
)

func TestItemDraft_SeedsFromItem(t *testing.T) {
	it := Item{ID: 1, Name: "Coca-Cola", Price: decimal.RequireFromString("5.99")}
	d := NewItemDraft(it)
	if d.Name != "Coca-Cola" || d.Price != "5.99" {
		t.Fatalf("unexpected draft: %+v", d)
	}
}

func TestItemDraft_Payload(t *testing.T) {
	p, err := ItemDraft{Name: "  Coca-Cola Lata ", Price: "5,90"}.Payload()
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	b, _ := json.Marshal(p)
	if string(b) != `{"name":"Coca-Cola Lata","price":5.9}` {
		t.Fatalf("unexpected wire body: %s", b)
	}
}

func TestItemDraft_PayloadRejectsMissingAndBadFields(t *testing.T) {
	cases := map[string]ItemDraft{
		"name":  {Name: "   ", Price: "1"},
		"price": {Name: "Água", Price: "abc"},
	}
	for field, d := range cases {
		_, err := d.Payload()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected validation error, got %v", field, err)
		}
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("%s: expected field error, got %v", field, verr.Fields)
		}
	}
	if _, err := (ItemDraft{Name: "x", Price: "-1"}).Payload(); err == nil {
		t.Fatalf("expected negative price to be rejected")
	}
}

func TestLotDraft_Payloads(t *testing.T) {
	d := LotDraft{Number: "LOTE-2024-001", Quantity: "100", Expiry: "01/03/2024"}
	cp, err := d.CreatePayload(7)
	if err != nil {
		t.Fatalf("create payload: %v", err)
	}
	b, _ := json.Marshal(cp)
	want := `{"number":"LOTE-2024-001","quantity":100,"expiry_date":"2024-03-01","item_id":7}`
	if string(b) != want {
		t.Fatalf("create body:\n got %s\nwant %s", b, want)
	}

	up, err := d.UpdatePayload()
	if err != nil {
		t.Fatalf("update payload: %v", err)
	}
	b, _ = json.Marshal(up)
	if string(b) != `{"number":"LOTE-2024-001","quantity":100,"expiry_date":"2024-03-01"}` {
		t.Fatalf("update body: %s", b)
	}
}

func TestLotDraft_RejectsBadQuantityAndDate(t *testing.T) {
	for _, d := range []LotDraft{
		{Number: "A", Quantity: "0", Expiry: "01/03/2024"},
		{Number: "A", Quantity: "1.5", Expiry: "01/03/2024"},
		{Number: "A", Quantity: "3", Expiry: "2024-03-01"},
		{Number: "A", Quantity: "3", Expiry: "30/02/2024"},
		{Number: "", Quantity: "3", Expiry: "01/03/2024"},
	} {
		if _, err := d.UpdatePayload(); err == nil {
			t.Fatalf("expected %+v to be rejected", d)
		}
	}
}

func TestLotDraft_SeedsFromLot(t *testing.T) {
	l := Lot{ID: 3, Number: "L1", Quantity: 12, ExpiryDate: calendar.MustNew(2024, time.March, 1), ItemID: 1}
	d := NewLotDraft(l)
	if d.Number != "L1" || d.Quantity != "12" || d.Expiry != "01/03/2024" {
		t.Fatalf("unexpected draft: %+v", d)
	}
}

func TestFormatPrice(t *testing.T) {
	for in, want := range map[string]string{"5.99": "R$ 5.99", "5.9": "R$ 5.90", "5": "R$ 5.00", "5.990": "R$ 5.99"} {
		if got := FormatPrice(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatPrice(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestItem_UnmarshalsNumericPrice(t *testing.T) {
	var items []Item
	if err := json.Unmarshal([]byte(`[{"id":1,"name":"Coca-Cola","price":5.99}]`), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) != 1 || items[0].Price.String() != "5.99" {
		t.Fatalf("unexpected items: %+v", items)
	}
}
