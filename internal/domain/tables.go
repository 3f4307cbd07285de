package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&ShopScheduler{},
	// Shop
	&Product{},
	&Cart{},
	&CartLine{},
	&Order{},
	&OrderLine{},
}
