package model

// All lists the models managed by auto-migration, parents first.
func All() []interface{} {
	return []interface{}{
		&FoodItem{},
		&Profile{},
		&MealEntry{},
		&Order{},
		&OrderItem{},
	}
}
