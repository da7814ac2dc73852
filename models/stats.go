package models

type ChartPoint struct {
	Date          string  `json:"date" bson:"date"`
	TotalOrders   int     `json:"totalOrders" bson:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue" bson:"totalRevenue"`
	TotalQuantity int     `json:"totalQuantity" bson:"totalQuantity"`
}

type AdminStats struct {
	TotalUsers   int64        `json:"totalUsers"`
	TotalPlants  int64        `json:"totalPlants"`
	TotalRevenue float64      `json:"totalRevenue"`
	TotalOrders  int          `json:"totalOrders"`
	ChartData    []ChartPoint `json:"chartData"`
}
