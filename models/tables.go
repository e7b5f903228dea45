package models

// Tables lists every model managed by AutoMigrate, in dependency order.
var Tables = []interface{}{
	&User{},
	&FinishedGood{},
	&SizeOption{},
	&Ingredient{},
	&RecipeLine{},
	&CartItem{},
	&RewardRule{},
	&CustomerReward{},
	&Order{},
	&OrderItem{},
}
