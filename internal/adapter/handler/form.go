package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/anle/storefront/internal/core/domain"
)

// Typed form parsing. Malformed values always fail with ErrInvalidInput;
// nothing falls back silently to a previous or default value.

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return id, nil
}

func formInt(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(r.PostFormValue(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", domain.ErrInvalidInput, name)
	}
	return value, nil
}

func formDecimal(r *http.Request, name string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(r.PostFormValue(name))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, name)
	}
	return value, nil
}

func formHas(r *http.Request, name string) bool {
	_, ok := r.PostForm[name]
	return ok
}
