package constants

import "strings"

// Category is the assembly grouping a BOM line belongs to.
type Category string

const (
	BowlAssembly       Category = "Bowl Assembly"
	ShaftAssembly      Category = "Shaft Assembly"
	RisingMainPipe     Category = "Rising Main Pipe"
	Accessories        Category = "Accessories"
	DeliveryMotorStool Category = "Delivery Bend / Motor Stool"
)

// sortCategories maps the spreadsheet sort string to its category.
var sortCategories = map[string]Category{
	"PL BOWL":    BowlAssembly,
	"PL SHAFT":   ShaftAssembly,
	"PL RM PIPE": RisingMainPipe,
	"PL ACC":     Accessories,
	"PL DB/MS":   DeliveryMotorStool,
}

// CategoryForSort resolves a sort string: known codes map to their category,
// unknown codes are kept verbatim, and an empty code yields no category.
func CategoryForSort(sort string) (string, bool) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return "", false
	}
	if cat, ok := sortCategories[sort]; ok {
		return string(cat), true
	}
	return sort, true
}
