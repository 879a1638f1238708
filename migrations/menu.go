package migrations

import "kusina-service/internal/entity"

var chaofanAddons = []entity.Addon{
	{Name: "Siomai", Price: 5},
	{Name: "Shanghai", Price: 5},
	{Name: "Skinless", Price: 10},
	{Name: "Egg", Price: 15},
}

func item(slug, name, description string, price float64, category entity.Category, image string, addons ...entity.Addon) entity.Product {
	return entity.Product{
		Slug:        slug,
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Image:       "/images/products/" + image,
		Addons:      addons,
	}
}

// DefaultMenu is the opening menu of the store.
func DefaultMenu() []entity.Product {
	return []entity.Product{
		item("hotsilog", "Hotsilog", "Hotdog with Sinangag (Fried Rice) and Itlog (Egg)", 60, entity.CategoryBudgetMeals, "hotsilog.jpg"),
		item("hamsilog", "Hamsilog", "Ham with Sinangag (Fried Rice) and Itlog (Egg)", 55, entity.CategoryBudgetMeals, "hamsilog.jpg"),
		item("silog", "Silog", "Sinangag (Fried Rice) and Itlog (Egg)", 35, entity.CategoryBudgetMeals, "silog.jpg"),
		item("skinless", "Skinless Rice", "Skinless Longganisa with Fried Rice", 40, entity.CategoryBudgetMeals, "skinless.jpg"),
		item("pork-chaofan", "Pork Chaofan", "Pork Fried Rice Chinese Style", 45, entity.CategoryBudgetMeals, "pork-chaofan.jpg", chaofanAddons...),
		item("beef-chaofan", "Beef Chaofan", "Beef Fried Rice Chinese Style", 50, entity.CategoryBudgetMeals, "beef-chaofan.jpg", chaofanAddons...),
		item("siomai-rice", "Siomai Rice", "Siomai with Fried Rice", 39, entity.CategoryBudgetMeals, "siomai-rice.jpg"),
		item("shanghai-rice", "Shanghai Rice", "Lumpia Shanghai with Rice", 39, entity.CategoryBudgetMeals, "shanghai-rice.jpg"),

		item("tapsilog", "Tapsilog", "Beef Tapa with Sinangag and Itlog", 100, entity.CategorySilogMeals, "tapasilog.jpg"),
		item("porksilog", "Porksilog", "Porkchop with Sinangag and Itlog", 95, entity.CategorySilogMeals, "porksilog.jpg"),
		item("chicksilog", "Chicksilog", "Chicken with Sinangag and Itlog", 95, entity.CategorySilogMeals, "chicksilog.jpg"),
		item("bangsilog", "Bangsilog", "Bangus with Sinangag and Itlog", 100, entity.CategorySilogMeals, "bangsilog.jpg"),
		item("sisigsilog", "Sisigsilog", "Sisig with Sinangag and Itlog", 95, entity.CategorySilogMeals, "sisigsilog.jpg"),
		item("tocilog", "Tocilog", "Tocino with Sinangag and Itlog", 85, entity.CategorySilogMeals, "tocilog.jpg"),

		item("lugaw", "Lugaw", "Filipino Rice Porridge", 20, entity.CategoryAlaCarte, "lugaw.jpg"),
		item("goto", "Goto", "Rice Porridge with Beef Tripe", 35, entity.CategoryAlaCarte, "goto.jpg"),
		item("beef-mami", "Beef Mami", "Beef Noodle Soup", 45, entity.CategoryAlaCarte, "beef-mami.jpg"),
		item("pares", "Pares", "Beef Stew with Rice", 60, entity.CategoryAlaCarte, "pares.jpg"),
		item("fries", "Fries", "Crispy French Fries", 25, entity.CategoryAlaCarte, "fries.jpg"),
		item("waffle", "Waffle", "Fresh Baked Waffle", 15, entity.CategoryAlaCarte, "waffle.jpg"),
		item("graham-bar", "Graham Bar", "Graham Cracker Dessert Bar", 20, entity.CategoryAlaCarte, "grahambar.jpg"),
		item("cheesetick", "Cheese Stick", "Crispy Cheese Stick (6 pieces per order)", 10, entity.CategoryAlaCarte, "cheesetick.jpg"),
		item("siomai-piece", "Siomai", "Chinese-style Siomai", 5, entity.CategoryAlaCarte, "siomai-rice.jpg"),

		item("coke-float", "Coke Float", "Coca-Cola with Ice Cream", 29, entity.CategoryBeverages, "coke-float.jpg"),
		item("iced-coffee", "Iced Coffee", "Cold Brewed Coffee with Ice (22oz)", 29, entity.CategoryBeverages, "iced-coffee.jpg"),
		item("fruit-soda-16", "Fruit Soda 16oz", "Refreshing Fruit-flavored Soda", 29, entity.CategoryBeverages, "16oz-fruits.jpg"),
		item("fruit-soda-22", "Fruit Soda 22oz", "Large Refreshing Fruit-flavored Soda", 39, entity.CategoryBeverages, "22ozfruitsoda.jpg"),
	}
}
