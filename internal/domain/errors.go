package domain

import "errors"

// Errores clasificables con errors.Is. Los per-instrumento no abortan el lote;
// ErrMalformedInput sí.
var (
	// ErrMissingColumn: falta la columna actual o predicted de un instrumento.
	ErrMissingColumn = errors.New("missing column")
	// ErrInsufficientData: cero pares alineados válidos (o muy pocas filas).
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDivisionByZero: precio actual igual a cero en MAPE o rise probability.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrMalformedInput: fecha no parseable, precio no numérico o fecha duplicada.
	ErrMalformedInput = errors.New("malformed input")
	// ErrNonFinite: una métrica desborda a ±Inf con precios finitos pero extremos.
	ErrNonFinite = errors.New("non-finite metric")
	// ErrInvalidHorizon: horizonte negativo.
	ErrInvalidHorizon = errors.New("invalid horizon")
)
