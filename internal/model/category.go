package model

import "time"

// Category represents a business-defined expense category. The catalog is
// ordered by ID, and that order is the tie-break for every report.
type Category struct {
	CreatedAt time.Time
	Name      string
	AltName   string // name in the staff's second language
	Emoji     string
	ID        int
}

// Label renders the category for display, prefixed by its emoji when set.
func (c Category) Label() string {
	if c.Emoji == "" {
		return c.Name
	}
	return c.Emoji + " " + c.Name
}

// DefaultCategories is the starter catalog for a small restaurant kitchen.
var DefaultCategories = []Category{
	{Name: "Lamb", AltName: "قوي گۆشى", Emoji: "🐑"},
	{Name: "Beef", AltName: "كالا گۆشى", Emoji: "🐄"},
	{Name: "Chicken", AltName: "توخۇ گۆشى", Emoji: "🐔"},
	{Name: "Fish", AltName: "بېلىق گۆشى", Emoji: "🐟"},
	{Name: "Vegetables (Sunling)", AltName: "كۆكتات سۇنلىڭ", Emoji: "🥬"},
	{Name: "Vegetables (Baqi)", AltName: "كۆكتات باقى", Emoji: "🥒"},
	{Name: "Seasoning", AltName: "تېتىتقۇ", Emoji: "🧂"},
	{Name: "Yogurt", AltName: "قېتىق", Emoji: "🥛"},
	{Name: "Tripe", AltName: "قېرېن", Emoji: "🫃"},
	{Name: "Lamb Skewers", AltName: "كاۋاپ", Emoji: "🍢"},
	{Name: "Youtazi", AltName: "يۇتازا", Emoji: "🫒"},
	{Name: "Cleaning Supplies", AltName: "تازلىق بۇيۇملىرى", Emoji: "🧽"},
}
