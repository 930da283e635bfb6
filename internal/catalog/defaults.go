package catalog

import "foodstall/internal/models"

var defaultItems = []models.MenuItem{
	{ID: "1", Name: "Samosa", Description: "Crisp pastry filled with spiced potato and peas", Price: 30, Category: models.CategorySnacks, Image: "/images/samosa.jpg"},
	{ID: "2", Name: "Vada Pav", Description: "Potato fritter in a soft bun with garlic chutney", Price: 40, Category: models.CategorySnacks, Image: "/images/vada-pav.jpg"},
	{ID: "3", Name: "Paneer Tikka", Description: "Chargrilled cottage cheese with peppers and onion", Price: 160, Category: models.CategorySnacks, Image: "/images/paneer-tikka.jpg"},
	{ID: "4", Name: "Masala Dosa", Description: "Rice crepe with potato masala, sambar and chutney", Price: 120, Category: models.CategoryMeals, Image: "/images/masala-dosa.jpg"},
	{ID: "5", Name: "Chole Bhature", Description: "Spiced chickpeas with two fried breads", Price: 140, Category: models.CategoryMeals, Image: "/images/chole-bhature.jpg"},
	{ID: "6", Name: "Veg Thali", Description: "Dal, two sabzis, rice, roti, salad and sweet", Price: 220, Category: models.CategoryMeals, Image: "/images/veg-thali.jpg"},
	{ID: "7", Name: "Masala Chai", Description: "Milk tea brewed with ginger and cardamom", Price: 25, Category: models.CategoryBeverages, Image: "/images/masala-chai.jpg"},
	{ID: "8", Name: "Cold Coffee", Description: "Blended iced coffee with milk", Price: 90, Category: models.CategoryBeverages, Image: "/images/cold-coffee.jpg"},
	{ID: "9", Name: "Sweet Lassi", Description: "Chilled yogurt drink", Price: 70, Category: models.CategoryBeverages, Image: "/images/lassi.jpg"},
	{ID: "10", Name: "Gulab Jamun", Description: "Two milk dumplings in rose syrup", Price: 60, Category: models.CategoryDesserts, Image: "/images/gulab-jamun.jpg"},
	{ID: "11", Name: "Kulfi", Description: "Frozen pistachio milk dessert", Price: 80, Category: models.CategoryDesserts, Image: "/images/kulfi.jpg"},
}

// DefaultCatalog returns a fresh copy of the built-in menu with every item available.
func DefaultCatalog() []models.MenuItem {
	items := make([]models.MenuItem, len(defaultItems))
	copy(items, defaultItems)
	for i := range items {
		items[i].Available = true
	}
	return items
}

// Categories returns the menu filter values, starting with All.
func Categories() []models.Category {
	return append([]models.Category{models.CategoryAll}, models.Categories...)
}

// FilterByCategory keeps items in category. All and the empty value keep everything.
func FilterByCategory(items []models.MenuItem, category models.Category) []models.MenuItem {
	if category == "" || category == models.CategoryAll {
		return items
	}
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}
