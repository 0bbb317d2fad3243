package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Eldesouky97/home-craft/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// MaxLineQuantity caps the units of one product in a single order,
	// after duplicate lines are merged.
	MaxLineQuantity = 10000
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// checkStruct runs the struct tags of in and converts failures into a
// validation error carrying one violation per field.
func checkStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ValidationError("validation.failed")
	}
	violations := make([]domain.Violation, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		violations = append(violations, domain.Violation{Field: field, Rule: fe.Tag()})
	}
	return domain.ValidationError("validation.failed", violations...)
}

type OrderItemInput struct {
	ProductID uint64 `json:"productId" validate:"required,min=1"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10000"`
	// Price is accepted for compatibility and ignored: lines are always
	// priced from the catalogue.
	Price *decimal.Decimal `json:"price,omitempty"`
}

type CreateOrderInput struct {
	Items           []OrderItemInput     `json:"items" validate:"required,min=1,dive"`
	ShippingAddress *domain.Address      `json:"shippingAddress" validate:"omitempty"`
	BillingAddress  *domain.Address      `json:"billingAddress" validate:"omitempty"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cash card bank_transfer"`
	Notes           string               `json:"notes" validate:"max=1000"`
	GuestEmail      string               `json:"guestEmail" validate:"omitempty,email,max=255"`
	OrderNumber     string               `json:"orderNumber" validate:"omitempty,max=64"`
}

// OrderLine is one validated, de-duplicated line of an order request.
type OrderLine struct {
	ProductID uint64
	Quantity  int
}

// ValidateCreateOrder checks in without touching storage and returns its
// lines with duplicate products merged, in first-seen order.
func ValidateCreateOrder(in CreateOrderInput, authenticated bool) ([]OrderLine, error) {
	if err := checkStruct(in); err != nil {
		return nil, err
	}
	if !authenticated && in.GuestEmail == "" {
		return nil, domain.ValidationError("order.guest_email",
			domain.Violation{Field: "guestEmail", Rule: "required"})
	}

	lines := make([]OrderLine, 0, len(in.Items))
	index := make(map[uint64]int, len(in.Items))
	for n, it := range in.Items {
		if i, ok := index[it.ProductID]; ok {
			// both operands are within [1, MaxLineQuantity] so the sum cannot overflow
			lines[i].Quantity += it.Quantity
			if lines[i].Quantity > MaxLineQuantity {
				return nil, domain.ValidationError("order.quantity_too_large",
					domain.Violation{Field: fmt.Sprintf("items[%d].quantity", n), Rule: "max"})
			}
			continue
		}
		index[it.ProductID] = len(lines)
		lines = append(lines, OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines, nil
}

type UpdateStatusInput struct {
	Status         domain.OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	TrackingNumber *string            `json:"trackingNumber" validate:"omitempty,max=100"`
}

func ValidateUpdateStatus(in UpdateStatusInput) error {
	return checkStruct(in)
}

// ListQuery is a paginated listing request. Zero values take the defaults.
type ListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

// NormalizePage clamps page to >= 1 and limit to [1, MaxPageLimit] and
// returns the matching row offset.
func NormalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit, (page - 1) * limit
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
	Pages int
}

func newPage[T any](items []T, page, limit int, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return &Page[T]{Items: items, Page: page, Limit: limit, Total: total, Pages: pages}
}
