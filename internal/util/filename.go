package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeFilename : приводит имя файла к безопасному для отрисовки виду.
// Диакритика раскладывается (NFD) и отбрасывается, всё непечатаемое
// и не-ASCII заменяется на подчёркивание.
func NormalizeFilename(name string) string {
	decomposed := norm.NFD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // комбинируемый знак от разложенной диакритики
		}
		if r < 0x20 || r > 0x7e {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
