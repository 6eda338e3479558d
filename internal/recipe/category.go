package recipe

// Category is the closed set of ingredient categories used to group
// grocery items into shopping-aisle sections.
type Category string

const (
	CategoryProduce    Category = "produce"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategorySeafood    Category = "seafood"
	CategoryBakery     Category = "bakery"
	CategoryFrozen     Category = "frozen"
	CategoryCanned     Category = "canned"
	CategoryDryGoods   Category = "dry goods"
	CategorySpices     Category = "spices"
	CategoryCondiments Category = "condiments"
	CategoryBeverages  Category = "beverages"
	CategorySnacks     Category = "snacks"
	CategoryOther      Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryProduce,
	CategoryDairy,
	CategoryMeat,
	CategorySeafood,
	CategoryBakery,
	CategoryFrozen,
	CategoryCanned,
	CategoryDryGoods,
	CategorySpices,
	CategoryCondiments,
	CategoryBeverages,
	CategorySnacks,
	CategoryOther,
}

var categoryLabels = map[Category]string{
	CategoryProduce:    "Produce",
	CategoryDairy:      "Dairy & Eggs",
	CategoryMeat:       "Meat & Poultry",
	CategorySeafood:    "Seafood",
	CategoryBakery:     "Bakery",
	CategoryFrozen:     "Frozen Foods",
	CategoryCanned:     "Canned Goods",
	CategoryDryGoods:   "Dry Goods & Pasta",
	CategorySpices:     "Spices & Herbs",
	CategoryCondiments: "Condiments & Oils",
	CategoryBeverages:  "Beverages",
	CategorySnacks:     "Snacks",
	CategoryOther:      "Other",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the human-readable section name for c.
// Unknown categories fall back to the "Other" label.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[CategoryOther]
}
