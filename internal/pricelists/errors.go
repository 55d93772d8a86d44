package pricelists

import (
	"fmt"

	"github.com/alima/supply/internal/shared"
)

var (
	// ErrNotFound indicates the price list or version does not exist.
	ErrNotFound = fmt.Errorf("pricelists: %w", shared.ErrNotFound)
	// ErrDefaultExists rejects a second default list for a unit.
	ErrDefaultExists = fmt.Errorf("%w: ya existe una lista de precios predeterminada para la unidad", shared.ErrConflict)
	// ErrNameTaken rejects creating a list whose name is already used by the unit.
	ErrNameTaken = fmt.Errorf("%w: ya existe una lista de precios con ese nombre para la unidad, usa la edición", shared.ErrConflict)
	// ErrNoValidPrices is returned when no row produced a price.
	ErrNoValidPrices = fmt.Errorf("%w: ningún producto tiene un precio válido, no se creó la lista", shared.ErrConflict)
	// ErrVersionConflict signals a concurrent append to the same list.
	ErrVersionConflict = fmt.Errorf("%w: la lista fue modificada al mismo tiempo, intenta de nuevo", shared.ErrConflict)
	// ErrInvalidWindow enforces valid_upto after valid_from.
	ErrInvalidWindow = fmt.Errorf("%w: valid_upto debe ser posterior a valid_from", shared.ErrValidation)
	// ErrNameRequired rejects unnamed lists.
	ErrNameRequired = fmt.Errorf("%w: el nombre de la lista es obligatorio", shared.ErrValidation)
)
