package portfolio

import "errors"

var (
	// ErrCapitalExceeded — нарушение инварианта: открытие увело бы капитал
	// в минус. Отдельная защита, не зависящая от admission-контроля.
	ErrCapitalExceeded = errors.New("open would make capital negative")

	// ErrPositionExists — уже есть открытая позиция по символу.
	ErrPositionExists = errors.New("position already open for symbol")

	// ErrNoPosition — операция требует открытой позиции.
	ErrNoPosition = errors.New("no open position for symbol")
)
