package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/bakery-app/utils"
)

// ErrorKind groups failures by how a caller should react to them.
type ErrorKind int

const (
	// KindValidation failures are expected and user-correctable; never retried.
	KindValidation ErrorKind = iota
	// KindNotFound means a referenced record does not exist.
	KindNotFound
	// KindConfiguration failures are operator errors surfaced as server faults.
	KindConfiguration
	// KindConsistency means an invariant was observed broken. Fatal, not retried.
	KindConsistency
	// KindTransient failures come from the store and are safe to retry from scratch.
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConfiguration:
		return "configuration"
	case KindConsistency:
		return "consistency"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error codes
const (
	CodeEmptyCart              = "empty_cart"
	CodeInsufficientStock      = "insufficient_stock"
	CodeInsufficientIngredient = "insufficient_ingredient"
	CodeNoRecipeConfigured     = "no_recipe_configured"
	CodeInvalidArgument        = "invalid_argument"
	CodeTotalMismatch          = "total_mismatch"
	CodeInsufficientPayment    = "insufficient_payment"
	CodeInvalidTransition      = "invalid_transition"
	CodeNotFound               = "not_found"
	CodeMisconfigured          = "misconfigured"
	CodeNegativeStock          = "negative_stock"
	CodeDuplicateActiveReward  = "duplicate_active_reward"
	CodeStoreUnavailable       = "store_unavailable"
)

// Error is the structured failure returned by every engine in this package.
// Detail carries the data a client needs to self-correct (item, shortfall).
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Detail  map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	se, ok := AsError(err)
	return ok && se.Code == code
}

func ErrEmptyCart() *Error {
	return &Error{Kind: KindValidation, Code: CodeEmptyCart, Message: "cart is empty"}
}

func ErrInsufficientStock(name string, available int) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %s: available %d", name, available),
		Detail:  map[string]interface{}{"item": name, "available": available},
	}
}

func ErrInsufficientIngredient(name string, required, available decimal.Decimal) *Error {
	shortfall := required.Sub(available)
	return &Error{
		Kind: KindValidation,
		Code: CodeInsufficientIngredient,
		Message: fmt.Sprintf("insufficient %s: required %s, available %s",
			name, required.String(), available.String()),
		Detail: map[string]interface{}{
			"ingredient": name,
			"required":   required.String(),
			"available":  available.String(),
			"shortfall":  shortfall.String(),
		},
	}
}

func ErrNoRecipeConfigured(goodName string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeNoRecipeConfigured,
		Message: fmt.Sprintf("no recipe configured for %s", goodName),
		Detail:  map[string]interface{}{"item": goodName},
	}
}

func ErrInvalidArgument(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func ErrNotFound(what string, id uint) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %d not found", what, id),
		Detail:  map[string]interface{}{"resource": what, "id": id},
	}
}

func ErrTotalMismatch(subtotal, discount, total decimal.Decimal) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeTotalMismatch,
		Message: fmt.Sprintf("order total does not match current prices: expected %s", utils.FormatCurrency(total)),
		Detail: map[string]interface{}{
			"subtotal": subtotal.StringFixed(2),
			"discount": discount.StringFixed(2),
			"total":    total.StringFixed(2),
		},
	}
}

func ErrInsufficientPayment(tendered, total decimal.Decimal) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInsufficientPayment,
		Message: fmt.Sprintf("cash tendered %s is less than total %s", utils.FormatCurrency(tendered), utils.FormatCurrency(total)),
		Detail:  map[string]interface{}{"tendered": tendered.StringFixed(2), "total": total.StringFixed(2)},
	}
}

func ErrInvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move order from %s to %s", from, to),
		Detail:  map[string]interface{}{"from": from, "to": to},
	}
}

func ErrMisconfigured(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Code: CodeMisconfigured, Message: fmt.Sprintf(format, args...)}
}

func ErrConsistency(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConsistency, Code: code, Message: fmt.Sprintf(format, args...)}
}

// storeError wraps an infrastructure failure as retryable unless it already
// carries a classification.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	return &Error{Kind: KindTransient, Code: CodeStoreUnavailable, Message: op, Err: err}
}
