package expense

import (
	"strings"
)

// DefaultGlyph is shown for categories missing from the glyph table.
const DefaultGlyph = "💸"

// foodCategory is the only category that requires a sub-category pick.
const foodCategory = "еда"

var glyphs = map[string]string{
	"еда":         "🍔",
	"ресторан":    "🍽️",
	"компы":       "💻",
	"грибы":       "🍄",
	"такси":       "🚕",
	"транспорт":   "🚌",
	"одежда":      "👕",
	"здоровье":    "💊",
	"кофе":        "☕",
	"развлечения": "🎮",
	"книги":       "📚",
	"аренда":      "🏠",
	"услуги":      "🛠️",
	"путешествия": "✈️",
	"связь":       "📱",
	"подарки":     "🎁",
	"дети":        "🧒",
	"животные":    "🐶",
}

// Glyph returns the emoji for a category. Lookup is case-insensitive.
func Glyph(category string) string {
	if g, ok := glyphs[normalizeCategory(category)]; ok {
		return g
	}
	return DefaultGlyph
}

// NeedsSubcategory reports whether expenses in this category must be
// assigned a sub-category before they are saved.
func NeedsSubcategory(category string) bool {
	return normalizeCategory(category) == foodCategory
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// Subcategory is one of the fixed choices offered for food expenses.
type Subcategory string

// Food sub-categories.
const (
	SubcategoryWolt    Subcategory = "wolt"
	SubcategoryGlovo   Subcategory = "glovo"
	SubcategoryGrocery Subcategory = "grocery"
)

var subcategoryNames = map[Subcategory]string{
	SubcategoryWolt:    "Wolt",
	SubcategoryGlovo:   "Glovo",
	SubcategoryGrocery: "Продукты",
}

var subcategoryGlyphs = map[Subcategory]string{
	SubcategoryWolt:    "🛵",
	SubcategoryGlovo:   "🚴",
	SubcategoryGrocery: "🛒",
}

// Subcategories returns the choices in display order.
func Subcategories() []Subcategory {
	return []Subcategory{SubcategoryWolt, SubcategoryGlovo, SubcategoryGrocery}
}

// Key is the stable identifier used in callback payloads and storage.
func (s Subcategory) Key() string {
	return string(s)
}

// Name is the human-readable sub-category name.
func (s Subcategory) Name() string {
	if name, ok := subcategoryNames[s]; ok {
		return name
	}
	return string(s)
}

// Label is the button text for the sub-category.
func (s Subcategory) Label() string {
	return subcategoryGlyphs[s] + " " + s.Name()
}

// ParseSubcategory maps a stored key back to a Subcategory.
func ParseSubcategory(key string) (Subcategory, bool) {
	s := Subcategory(key)
	_, ok := subcategoryNames[s]
	return s, ok
}

// SubcategoryName renders a stored key, falling back to the raw key for unknown values.
func SubcategoryName(key string) string {
	if s, ok := ParseSubcategory(key); ok {
		return s.Name()
	}
	return key
}
