package handler

import (
	"github.com/homecooks/profitability/internal/interfaces/http/router"
)

// Routes returns the /d2c group
func (h *D2CHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("d2c", "/d2c").
		GET("/dashboard", h.GetDashboard).
		GET("/orders", h.ListOrders).
		GET("/weekly", h.Weekly)
}

// Routes returns the /retail group
func (h *RetailHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("retail", "/retail").
		GET("/dashboard", h.GetDashboard).
		GET("/stores", h.Stores)
}

// Routes returns the /gopuff group
func (h *GoPuffHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("gopuff", "/gopuff").
		GET("/dashboard", h.GetDashboard)
}

// Routes returns the /subscriptions group
func (h *SubscriptionHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("subscriptions", "/subscriptions").
		GET("/metrics", h.GetMetrics)
}

// Routes returns the /costing group
func (h *CostingHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("costing", "/costing").
		GET("/packaging", h.GetPackaging).
		GET("/retail", h.GetRetail)
}

// Routes returns the /system group
func (h *SystemHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping).
		GET("/refresh", h.GetRefreshStatus).
		POST("/refresh", h.TriggerRefresh).
		GET("/connection", h.TestConnection)
}
