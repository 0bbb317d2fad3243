package domain

import "github.com/shopspring/decimal"

// GeneralStats are marketplace-wide counters shown on the landing page.
// Revenue only counts paid orders.
type GeneralStats struct {
	TotalUsers    int64           `json:"totalUsers"`
	TotalStores   int64           `json:"totalStores"`
	TotalProducts int64           `json:"totalProducts"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// DashboardStats summarise a seller's active stores.
type DashboardStats struct {
	TotalStores   int64           `json:"totalStores"`
	TotalProducts int64           `json:"totalProducts"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}
