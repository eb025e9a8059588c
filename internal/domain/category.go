package domain

import "strings"

// Category is a product category as the catalog service names it.
type Category string

const (
	CategoryAnimal      Category = "ANIMAL"
	CategoryDoll        Category = "DOLL"
	CategoryCharacter   Category = "CHARACTER"
	CategoryAccessories Category = "ACCESSORIES"
	CategorySeasonal    Category = "SEASONAL"
)

// Token returns the lower-cased identifier used in routes and query paths.
func (c Category) Token() string {
	return strings.ToLower(string(c))
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAnimal, CategoryDoll, CategoryCharacter, CategoryAccessories, CategorySeasonal:
		return true
	}
	return false
}

// ParseCategory accepts any casing of a category token.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// CategorySelection is what the shopper filters by: a category or all of them.
type CategorySelection string

const (
	SelectAll         CategorySelection = "all"
	SelectAnimal      CategorySelection = "animal"
	SelectDoll        CategorySelection = "doll"
	SelectCharacter   CategorySelection = "character"
	SelectAccessories CategorySelection = "accessories"
	SelectSeasonal    CategorySelection = "seasonal"
)

// ParseSelection normalizes a route parameter or button value. Empty and
// unrecognized input select everything.
func ParseSelection(raw string) CategorySelection {
	token := strings.ToLower(strings.TrimSpace(raw))
	if token == string(SelectAll) {
		return SelectAll
	}
	if c, ok := ParseCategory(token); ok {
		return CategorySelection(c.Token())
	}
	return SelectAll
}

// IsAll reports whether s selects the unfiltered catalog.
func (s CategorySelection) IsAll() bool {
	return s == SelectAll || s == ""
}

// Category returns the category s filters by. ok is false for SelectAll.
func (s CategorySelection) Category() (Category, bool) {
	if s.IsAll() {
		return "", false
	}
	return ParseCategory(string(s))
}

// CategoryInfo is the display metadata for one selection.
type CategoryInfo struct {
	Selection   CategorySelection `json:"id"`
	Label       string            `json:"label"`
	Icon        string            `json:"icon"`
	Description string            `json:"description"`
}

// DefaultIcon is shown for a category the registry does not know.
const DefaultIcon = "🧸"

var registry = [...]CategoryInfo{
	{SelectAll, "All Products", "🛍️", "Discover our complete collection of handcrafted amigurumi"},
	{SelectAnimal, "Animals", "🐻", "Cute and cuddly animal friends"},
	{SelectDoll, "Dolls", "👧", "Beautiful handmade dolls"},
	{SelectCharacter, "Characters", "🦄", "Fantasy and cartoon characters"},
	{SelectAccessories, "Accessories", "🧶", "Useful and decorative items"},
	{SelectSeasonal, "Seasonal", "🎄", "Holiday and seasonal decorations"},
}

// Selections returns every selection in filter-button order, all first.
func Selections() []CategoryInfo {
	out := make([]CategoryInfo, len(registry))
	copy(out, registry[:])
	return out
}

// Lookup returns the metadata for s. Unknown selections resolve to all.
func Lookup(s CategorySelection) CategoryInfo {
	for _, info := range registry {
		if info.Selection == s {
			return info
		}
	}
	return registry[0]
}

// IconFor returns the icon of category c, or DefaultIcon.
func IconFor(c Category) string {
	if !c.Valid() {
		return DefaultIcon
	}
	return Lookup(CategorySelection(c.Token())).Icon
}
