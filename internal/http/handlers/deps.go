package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"candela/internal/alert"
	"candela/internal/cart"
	"candela/internal/config"
	"candela/internal/notify"
	"candela/internal/repos"
	"candela/internal/reserve"
	"candela/internal/services"
)

type Deps struct {
	Availability  *AvailabilityHandler
	Cart          *CartHandler
	Reservations  *ReservationHandler
	Notifications *NotificationHandler
	Alerts        *AlertHandler
	Wishlist      *WishlistHandler
	Admin         *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, reservations *reserve.Store, notifications *notify.Store, alerter *alert.Alerter) *Deps {
	catalogRepo := repos.NewCatalogRepo(db)
	wishRepo := repos.NewWishlistRepo(db)

	catalogSvc := services.NewCatalogService(catalogRepo, cfg.LowStockThreshold)
	wishSvc := services.NewWishlistService(wishRepo)

	return &Deps{
		Availability:  &AvailabilityHandler{Catalog: catalogSvc},
		Cart:          &CartHandler{Carts: cart.NewManager(), Catalog: catalogSvc},
		Reservations:  &ReservationHandler{Store: reservations},
		Notifications: &NotificationHandler{Store: notifications},
		Alerts: &AlertHandler{
			Alerter:    alerter,
			Catalog:    catalogSvc,
			AdminEmail: cfg.AdminEmail,
			Threshold:  cfg.LowStockThreshold,
		},
		Wishlist: &WishlistHandler{Wish: wishSvc},
		Admin:    &AdminHandler{Catalog: catalogRepo, Notify: notifications, BaseURL: cfg.BaseURL},
	}
}

// Register mounts every route on the app. main and the HTTP tests share it.
func Register(app *fiber.App, deps *Deps) {
	api := app.Group("/api/v1")

	api.Get("/availability", deps.Availability.Check)

	api.Get("/cart", deps.Cart.View)
	api.Post("/cart/items", deps.Cart.AddItem)
	api.Post("/cart/items/update", deps.Cart.UpdateItem)
	api.Post("/cart/items/remove", deps.Cart.RemoveItem)
	api.Post("/cart/clear", deps.Cart.Clear)

	api.Post("/reservations", deps.Reservations.Create)
	api.Post("/reservations/expire", deps.Reservations.Expire)
	api.Get("/reservations/:id", deps.Reservations.Get)
	api.Delete("/reservations/:id", deps.Reservations.Release)

	api.Post("/notifications", deps.Notifications.Subscribe)
	api.Get("/notifications", deps.Notifications.List)
	api.Delete("/notifications/:id", deps.Notifications.Unsubscribe)

	api.Post("/low-stock-alerts", deps.Alerts.Dispatch)

	api.Get("/wishlist", deps.Wishlist.List)
	api.Post("/wishlist", deps.Wishlist.Save)
	api.Post("/wishlist/delete", deps.Wishlist.Unsave)

	admin := app.Group("/admin")
	admin.Post("/inventory", deps.Admin.UpdateInventory)
}
