package cli

import "github.com/Harshitk-cp/recipebot/internal/domain"

func demoRecipes() []domain.Recipe {
	return []domain.Recipe{
		{Name: "Leek and Potato Soup", Rating: 4, Ease: "Super simple", Type: "Soup", PrepTime: 40, Cookbook: "Soups", Page: "12", Ingredients: "leek, potato, stock, butter"},
		{Name: "Carrot Ginger Soup", Rating: 3, Ease: "Fairly easy", Type: "Soup", PrepTime: 35, Cookbook: "Soups", Page: "18", Ingredients: "carrot, ginger, onion, stock"},
		{Name: "Mango Salsa", Rating: 5, Ease: "Super simple", Type: "Side", PrepTime: 10, Ingredients: "mango, red onion, lime, coriander"},
		{Name: "Chicken Curry", Rating: 4, Ease: "Average", Type: "Main", PrepTime: 60, Cookbook: "Curry Nights", Page: "44", Ingredients: "chicken, onion, tomato, garam masala, rice"},
		{Name: "Mushroom Risotto", Rating: 4, Ease: "Average", Type: "Main", PrepTime: 45, Ingredients: "mushroom, arborio rice, parmesan, stock"},
		{Name: "Pulled Pork", Rating: 5, Ease: "Fairly easy", Type: "Main", PrepTime: 480, Slowcooker: "low 8h", Ingredients: "pork shoulder, barbecue sauce, onion"},
		{Name: "Banana Bread", Rating: 4, Ease: "Fairly easy", Type: "Baking", PrepTime: 70, Cookbook: "Baking Basics", Page: "3", Ingredients: "banana, flour, sugar, butter, egg"},
		{Name: "Beef Wellington", Rating: 5, Ease: "Difficult", Type: "Main", PrepTime: 150, Ingredients: "beef fillet, puff pastry, mushroom, egg"},
	}
}
