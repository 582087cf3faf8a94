package source

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// inventoryKinds are the folded expense kinds booked as cost of goods
var inventoryKinds = []string{"inventory", "resale", "revenda", "mercadoria", "estoque"}

// foldKind lowercases s and strips diacritics
func foldKind(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// isInventoryKind reports whether an expense kind denotes goods bought for resale
func isInventoryKind(kind string) bool {
	k := foldKind(kind)
	if k == "" {
		return false
	}
	for _, candidate := range inventoryKinds {
		if strings.Contains(k, candidate) {
			return true
		}
	}
	return false
}
