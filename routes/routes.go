package routes

import (
	"context"
	"net/http"
	"time"

	"plantnet/admin"
	"plantnet/auth"
	"plantnet/idempotency"
	"plantnet/middleware"
	"plantnet/models"
	"plantnet/orders"
	"plantnet/pay"
	"plantnet/plants"
	"plantnet/ratelim"
	"plantnet/reports"
	"plantnet/users"
	"plantnet/utils"

	"github.com/julienschmidt/httprouter"
)

type Deps struct {
	Gate        *middleware.Gate
	Limiter     *ratelim.RateLimiter
	Idempotency *idempotency.Guard
	Sessions    *auth.Sessions
	Users       *users.Handler
	Admin       *admin.Handler
	Plants      *plants.Handler
	Orders      *orders.Handler
	Pay         *pay.Handler
	Reports     *reports.Handler
	// Ping checks the backing store for /health; nil means always healthy.
	Ping func(ctx context.Context) error
}

func RegisterRoutes(router *httprouter.Router, d Deps) {
	AddSessionRoutes(router, d)
	AddUserRoutes(router, d)
	AddAdminRoutes(router, d)
	AddPlantRoutes(router, d)
	AddOrderRoutes(router, d)
	AddPayRoutes(router, d)
	AddHealthRoute(router, d.Ping)
}

func authed(d Deps) middleware.Middleware {
	return d.Gate.Authenticate
}

func role(d Deps, r models.Role) middleware.Middleware {
	return middleware.Chain(d.Gate.Authenticate, d.Gate.RequireRole(r))
}

// retryable guards money and stock mutations: rate limit, identity, then
// Idempotency-Key replay.
func retryable(d Deps) middleware.Middleware {
	return middleware.Chain(d.Limiter.Limit, d.Gate.Authenticate, d.Idempotency.Middleware)
}

func AddSessionRoutes(router *httprouter.Router, d Deps) {
	router.POST("/jwt", d.Limiter.Limit(d.Sessions.IssueToken))
	router.GET("/logout", d.Sessions.Logout)
}

func AddUserRoutes(router *httprouter.Router, d Deps) {
	router.POST("/users/:email", d.Users.SaveUser)
	router.GET("/users/role/:email", d.Users.GetRole)
	router.PATCH("/users/:email", authed(d)(d.Users.RequestSeller))
}

func AddAdminRoutes(router *httprouter.Router, d Deps) {
	admins := role(d, models.RoleAdmin)
	router.GET("/all-users/:email", admins(d.Admin.GetUsers))
	router.PATCH("/user/role/:email", admins(d.Admin.UpdateRole))
	router.GET("/admin-stat", admins(d.Reports.GetAdminStats))
}

func AddPlantRoutes(router *httprouter.Router, d Deps) {
	sellers := role(d, models.RoleSeller)
	router.POST("/plants", sellers(d.Plants.CreatePlant))
	router.GET("/seller/plants", sellers(d.Plants.GetSellerPlants))
	router.DELETE("/delete/plant/seller/:id", sellers(d.Plants.DeletePlant))

	router.GET("/plants", d.Plants.GetPlants)
	router.GET("/plant/:id", d.Plants.GetPlant)
}

func AddOrderRoutes(router *httprouter.Router, d Deps) {
	router.POST("/order", retryable(d)(d.Orders.PlaceOrder))
	router.PATCH("/plants/quantity/:id", authed(d)(d.Orders.AdjustQuantity))
	router.GET("/orders", authed(d)(d.Reports.GetCustomerOrders))
	router.GET("/orders/seller", role(d, models.RoleSeller)(d.Reports.GetSellerOrders))
	router.PATCH("/order/status/:id", role(d, models.RoleSeller)(d.Orders.UpdateStatus))
	router.DELETE("/orders/:id", authed(d)(d.Orders.CancelOrder))
	router.GET("/order/receipt/:id", authed(d)(d.Orders.Receipt))
}

func AddPayRoutes(router *httprouter.Router, d Deps) {
	router.POST("/create-payment-intent", retryable(d)(d.Pay.CreatePaymentIntent))
}

func AddHealthRoute(router *httprouter.Router, ping func(ctx context.Context) error) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				utils.RespondWithJSON(w, http.StatusServiceUnavailable, utils.M{"status": "unavailable"})
				return
			}
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
}
