package contracts

import "errors"

// Sentinel errors shared across stages
var (
	ErrInvalidSymbol     = errors.New("invalid symbol")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrDataUnavailable   = errors.New("financial data unavailable")
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrHoldingNotFound   = errors.New("holding not found")
)
