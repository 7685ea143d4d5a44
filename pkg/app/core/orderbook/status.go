package orderbook

import "errors"

// Status is the closed set of outcomes reported by book and registry operations
type Status uint8

const (
	OK Status = iota
	SymbolExists
	SymbolNotExists
	OrderExists
	OrderNotExists
)

var (
	ErrSymbolExists    = errors.New("symbol already exists")
	ErrSymbolNotExists = errors.New("symbol does not exist")
	ErrOrderExists     = errors.New("order already exists")
	ErrOrderNotExists  = errors.New("order does not exist")
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case SymbolExists:
		return "SYMBOL_EXISTS"
	case SymbolNotExists:
		return "SYMBOL_NOT_EXISTS"
	case OrderExists:
		return "ORDER_EXISTS"
	case OrderNotExists:
		return "ORDER_NOT_EXISTS"
	default:
		return "UNKNOWN"
	}
}

// Err maps a status onto a sentinel error; OK maps to nil
func (s Status) Err() error {
	switch s {
	case OK:
		return nil
	case SymbolExists:
		return ErrSymbolExists
	case SymbolNotExists:
		return ErrSymbolNotExists
	case OrderExists:
		return ErrOrderExists
	case OrderNotExists:
		return ErrOrderNotExists
	}
	return errors.New("unknown status")
}
