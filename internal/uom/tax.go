package uom

import (
	"errors"
	"fmt"
	"math"
)

// TaxKind enumerates the taxes a product line carries.
type TaxKind string

const (
	IVA  TaxKind = "IVA"
	IEPS TaxKind = "IEPS"
)

var satTaxCodes = map[TaxKind]string{
	IVA:  "002",
	IEPS: "003",
}

// ErrTaxRateRange is returned for rates outside [0, 1), NaN included.
var ErrTaxRateRange = errors.New("la tasa debe estar entre 0 y 1")

// SATCode returns the SAT impuesto code.
func (k TaxKind) SATCode() string { return satTaxCodes[k] }

// TaxKindFromSAT is the inverse of SATCode.
func TaxKindFromSAT(code string) (TaxKind, error) {
	for k, c := range satTaxCodes {
		if c == code {
			return k, nil
		}
	}
	return "", fmt.Errorf("impuesto SAT %q no reconocido", code)
}

// ValidateRate checks that a fractional rate lies in [0, 1).
func ValidateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate >= 1 {
		return ErrTaxRateRange
	}
	return nil
}

// FormatRate renders a fractional rate as the SAT "TasaOCuota" string,
// e.g. 0.16 -> "0.160000".
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.6f", rate)
}
