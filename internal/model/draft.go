package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"stock-cli/internal/calendar"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidationError maps draft field names to human-readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func checkStruct(s any) *ValidationError {
	out := &ValidationError{}
	err := validate.Struct(s)
	if err == nil {
		return out
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		out.add("form", err.Error())
		return out
	}
	for _, fe := range ve {
		out.add(fe.Field(), formatFieldError(fe))
	}
	return out
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "required"
	case "numeric":
		return "must be a number"
	case "max":
		return fmt.Sprintf("at most %s characters", e.Param())
	default:
		return fmt.Sprintf("failed %q", e.Tag())
	}
}

// ItemDraft holds the item form fields as typed.
type ItemDraft struct {
	Name  string `json:"name" validate:"required,max=50"`
	Price string `json:"price" validate:"required,numeric"`
}

// NewItemDraft seeds a draft from an existing item.
func NewItemDraft(it Item) ItemDraft {
	return ItemDraft{Name: it.Name, Price: it.Price.String()}
}

func (d ItemDraft) normalized() ItemDraft {
	return ItemDraft{
		Name: strings.TrimSpace(d.Name),
		// Accept the decimal comma users type in pt-BR locales.
		Price: strings.ReplaceAll(strings.TrimSpace(d.Price), ",", "."),
	}
}

// Payload validates the draft and converts it to the wire shape.
func (d ItemDraft) Payload() (ItemPayload, error) {
	n := d.normalized()
	verr := checkStruct(n)
	var price decimal.Decimal
	if _, bad := verr.Fields["price"]; !bad {
		p, err := decimal.NewFromString(n.Price)
		switch {
		case err != nil:
			verr.add("price", "must be a number")
		case p.IsNegative():
			verr.add("price", "must not be negative")
		default:
			price = p
		}
	}
	if err := verr.orNil(); err != nil {
		return ItemPayload{}, err
	}
	return ItemPayload{Name: n.Name, Price: json.Number(price.String())}, nil
}

// LotDraft holds the lot form fields as typed. Expiry is DD/MM/YYYY.
type LotDraft struct {
	Number   string `json:"number" validate:"required,max=20"`
	Quantity string `json:"quantity" validate:"required,numeric"`
	Expiry   string `json:"expiry_date" validate:"required"`
}

// NewLotDraft seeds a draft from an existing lot.
func NewLotDraft(l Lot) LotDraft {
	return LotDraft{
		Number:   l.Number,
		Quantity: strconv.Itoa(l.Quantity),
		Expiry:   l.ExpiryDate.Display(),
	}
}

func (d LotDraft) normalized() LotDraft {
	return LotDraft{
		Number:   strings.TrimSpace(d.Number),
		Quantity: strings.TrimSpace(d.Quantity),
		Expiry:   strings.TrimSpace(d.Expiry),
	}
}

func (d LotDraft) parse() (string, int, calendar.Date, error) {
	n := d.normalized()
	verr := checkStruct(n)
	qty := 0
	if _, bad := verr.Fields["quantity"]; !bad {
		q, err := strconv.Atoi(n.Quantity)
		switch {
		case err != nil:
			verr.add("quantity", "must be a whole number")
		case q < 1:
			verr.add("quantity", "must be at least 1")
		default:
			qty = q
		}
	}
	var expiry calendar.Date
	if _, bad := verr.Fields["expiry_date"]; !bad {
		e, err := calendar.ParseDisplay(n.Expiry)
		if err != nil {
			verr.add("expiry_date", "must be a date (DD/MM/YYYY)")
		} else {
			expiry = e
		}
	}
	return n.Number, qty, expiry, verr.orNil()
}

// CreatePayload validates the draft for a new lot of itemID.
func (d LotDraft) CreatePayload(itemID int64) (LotCreatePayload, error) {
	number, qty, expiry, err := d.parse()
	if err != nil {
		return LotCreatePayload{}, err
	}
	return LotCreatePayload{Number: number, Quantity: qty, ExpiryDate: expiry, ItemID: itemID}, nil
}

// UpdatePayload validates the draft for an existing lot.
func (d LotDraft) UpdatePayload() (LotUpdatePayload, error) {
	number, qty, expiry, err := d.parse()
	if err != nil {
		return LotUpdatePayload{}, err
	}
	return LotUpdatePayload{Number: number, Quantity: qty, ExpiryDate: expiry}, nil
}
