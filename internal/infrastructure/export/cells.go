// Package export implementa los renderers de reportes tabulares en CSV y Excel.
package export

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// cellText representación plana de una celda: decimales con 2 cifras, sin símbolo.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case decimal.Decimal:
		return x.StringFixed(2)
	default:
		return fmt.Sprint(x)
	}
}
