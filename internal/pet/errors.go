package pet

import "errors"

var (
	ErrInsufficientStock = errors.New("out of stock")
	ErrInsufficientFunds = errors.New("not enough pet points")
	ErrInvalidPurchase   = errors.New("invalid purchase")
	ErrInvalidName       = errors.New("name must not be blank")
	ErrUnknownItem       = errors.New("unknown item")
)
