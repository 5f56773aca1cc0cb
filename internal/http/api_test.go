package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"candela/internal/alert"
	"candela/internal/config"
	"candela/internal/http/handlers"
	"candela/internal/mail"
	"candela/internal/notify"
	"candela/internal/repos"
	"candela/internal/reserve"
)

type fakeSender struct {
	sent []mail.Message
}

func (f *fakeSender) Send(m mail.Message) (string, error) {
	f.sent = append(f.sent, m)
	return "fake-id", nil
}

// testEnv is a full API surface over a seeded in-memory catalog, with a
// movable clock shared by the reservation store and the alerter.
type testEnv struct {
	app    *fiber.App
	sender *fakeSender
	now    time.Time
}

func newEnv(t *testing.T, adminEmail string) *testEnv {
	t.Helper()
	db, err := repos.OpenDB("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	env := &testEnv{
		sender: &fakeSender{},
		now:    time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return env.now }

	cfg := config.Config{
		BaseURL:           "https://candela.test",
		LowStockThreshold: 10,
		AdminEmail:        adminEmail,
	}
	deps := handlers.NewDeps(db, cfg,
		reserve.NewStore(reserve.WithClock(clock)),
		notify.NewStore(env.sender),
		alert.New(env.sender, alert.WithClock(clock)),
	)

	app := fiber.New()
	app.Use(requestid.New())
	handlers.Register(app, deps)
	env.app = app
	return env
}

func jsonReq(method, target string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) do(t *testing.T, req *http.Request, wantStatus int, out any) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: want %d, got %d; body=%s", req.Method, req.URL, wantStatus, resp.StatusCode, body)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", req.Method, req.URL, err)
		}
	}
	return resp
}

func TestAvailabilityEndpoint(t *testing.T) {
	env := newEnv(t, "")

	var got struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}
	env.do(t, jsonReq("GET", "/api/v1/availability?productId=amber-noir&variantId=amber-noir-320", nil), 200, &got)
	if got.Status != "low_stock" || got.Qty != 3 {
		t.Fatalf("variant: want low_stock/3, got %s/%d", got.Status, got.Qty)
	}

	env.do(t, jsonReq("GET", "/api/v1/availability?productId=fiori-di-sicilia", nil), 200, &got)
	if got.Status != "low_stock" || got.Qty != 8 {
		t.Fatalf("product aggregate: want low_stock/8, got %s/%d", got.Status, got.Qty)
	}

	env.do(t, jsonReq("GET", "/api/v1/availability?productId=velluto-spray", nil), 200, &got)
	if got.Status != "in_stock" {
		t.Fatalf("variantless product: want in_stock, got %s", got.Status)
	}

	env.do(t, jsonReq("GET", "/api/v1/availability", nil), 400, nil)
	env.do(t, jsonReq("GET", "/api/v1/availability?productId=no-such", nil), 404, nil)
}

func TestReservationAPI(t *testing.T) {
	env := newEnv(t, "")

	env.do(t, jsonReq("POST", "/api/v1/reservations", fiber.Map{"productId": "amber-noir"}), 400, nil)

	var created struct {
		Reservation reserve.Reservation `json:"reservation"`
		Success     bool                `json:"success"`
	}
	env.do(t, jsonReq("POST", "/api/v1/reservations", fiber.Map{
		"variantId": "amber-noir-320",
		"productId": "amber-noir",
		"quantity":  2,
	}), 201, &created)
	if !created.Success || created.Reservation.ID == "" {
		t.Fatalf("unexpected create response: %+v", created)
	}
	id := created.Reservation.ID

	env.do(t, jsonReq("GET", "/api/v1/reservations/"+id, nil), 200, nil)

	// Past the deadline: first read is 410 Gone, then the hold is forgotten.
	env.now = env.now.Add(reserve.Expiry + time.Second)
	var gone struct {
		Error string `json:"error"`
	}
	env.do(t, jsonReq("GET", "/api/v1/reservations/"+id, nil), 410, &gone)
	if gone.Error != "Reservation has expired" {
		t.Fatalf("want expiry message, got %q", gone.Error)
	}
	env.do(t, jsonReq("GET", "/api/v1/reservations/"+id, nil), 404, nil)

	env.do(t, jsonReq("POST", "/api/v1/reservations", fiber.Map{
		"variantId": "amber-noir-180",
		"productId": "amber-noir",
		"quantity":  1,
	}), 201, &created)
	env.do(t, jsonReq("DELETE", "/api/v1/reservations/"+created.Reservation.ID, nil), 200, nil)
	env.do(t, jsonReq("DELETE", "/api/v1/reservations/"+created.Reservation.ID, nil), 404, nil)
}

func TestReservationExpireEndpoint(t *testing.T) {
	env := newEnv(t, "")

	for _, v := range []string{"amber-noir-180", "amber-noir-320"} {
		env.do(t, jsonReq("POST", "/api/v1/reservations", fiber.Map{
			"variantId": v, "productId": "amber-noir", "quantity": 1,
		}), 201, nil)
	}

	env.now = env.now.Add(reserve.Expiry + time.Second)
	var swept struct {
		Cleaned int `json:"cleaned"`
	}
	env.do(t, jsonReq("POST", "/api/v1/reservations/expire", nil), 200, &swept)
	if swept.Cleaned != 2 {
		t.Fatalf("want 2 cleaned, got %d", swept.Cleaned)
	}
}

func TestNotificationAPI(t *testing.T) {
	env := newEnv(t, "")

	env.do(t, jsonReq("POST", "/api/v1/notifications", fiber.Map{"productId": "amber-noir"}), 400, nil)
	env.do(t, jsonReq("POST", "/api/v1/notifications", fiber.Map{
		"productId": "amber-noir", "email": "not-an-email",
	}), 400, nil)

	var subResp struct {
		Notification notify.Subscription `json:"notification"`
		Message      string              `json:"message"`
	}
	env.do(t, jsonReq("POST", "/api/v1/notifications", fiber.Map{
		"productId": "fiori-di-sicilia", "variantId": "fiori-floral", "email": "anna@example.com",
	}), 201, &subResp)
	if subResp.Message != "Successfully subscribed to stock availability notifications" {
		t.Fatalf("unexpected message %q", subResp.Message)
	}

	// Same triple again: 200, not 201, and the original record comes back.
	var dup struct {
		Notification notify.Subscription `json:"notification"`
		Message      string              `json:"message"`
	}
	env.do(t, jsonReq("POST", "/api/v1/notifications", fiber.Map{
		"productId": "fiori-di-sicilia", "variantId": "fiori-floral", "email": "anna@example.com",
	}), 200, &dup)
	if dup.Notification.ID != subResp.Notification.ID {
		t.Fatalf("duplicate should return the original record")
	}
	if dup.Message != "You are already subscribed to notifications for this product" {
		t.Fatalf("unexpected message %q", dup.Message)
	}

	var list struct {
		Notifications []notify.Subscription `json:"notifications"`
	}
	env.do(t, jsonReq("GET", "/api/v1/notifications?email=anna@example.com", nil), 200, &list)
	if len(list.Notifications) != 1 {
		t.Fatalf("want 1 subscription, got %d", len(list.Notifications))
	}
	env.do(t, jsonReq("GET", "/api/v1/notifications", nil), 400, nil)

	env.do(t, jsonReq("DELETE", "/api/v1/notifications/"+subResp.Notification.ID, nil), 200, nil)
	env.do(t, jsonReq("DELETE", "/api/v1/notifications/"+subResp.Notification.ID, nil), 404, nil)
}

func TestLowStockAlertsRequireAdminEmail(t *testing.T) {
	env := newEnv(t, "")
	var got struct {
		Error string `json:"error"`
	}
	env.do(t, jsonReq("POST", "/api/v1/low-stock-alerts", nil), 500, &got)
	if got.Error != "ADMIN_EMAIL is not configured" {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestLowStockAlertsCatalogScan(t *testing.T) {
	env := newEnv(t, "admin@candela.test")

	// Seeded low variants: amber-noir-320 (3) and fiori-citrus (8).
	var got struct {
		AlertsSent int         `json:"alertsSent"`
		Details    []alert.Key `json:"details"`
	}
	env.do(t, jsonReq("POST", "/api/v1/low-stock-alerts", nil), 200, &got)
	if got.AlertsSent != 2 {
		t.Fatalf("want 2 alerts, got %d (%v)", got.AlertsSent, got.Details)
	}
	if len(env.sender.sent) != 2 {
		t.Fatalf("want 2 mails, got %d", len(env.sender.sent))
	}

	// Inside the cooldown nothing fires again.
	env.do(t, jsonReq("POST", "/api/v1/low-stock-alerts", nil), 200, &got)
	if got.AlertsSent != 0 {
		t.Fatalf("cooldown should silence the rescan, got %d", got.AlertsSent)
	}

	env.now = env.now.Add(alert.Cooldown + time.Hour)
	env.do(t, jsonReq("POST", "/api/v1/low-stock-alerts", nil), 200, &got)
	if got.AlertsSent != 2 {
		t.Fatalf("past the cooldown both keys alert again, got %d", got.AlertsSent)
	}
}

func sid(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	return nil
}

func TestCartAPI(t *testing.T) {
	env := newEnv(t, "")

	env.do(t, jsonReq("POST", "/api/v1/cart/items", fiber.Map{"variantId": "amber-noir-320"}), 400, nil)
	env.do(t, jsonReq("POST", "/api/v1/cart/items", fiber.Map{"productId": "no-such"}), 404, nil)
	env.do(t, jsonReq("POST", "/api/v1/cart/items", fiber.Map{
		"productId": "amber-noir", "variantId": "no-such",
	}), 404, nil)

	resp := env.do(t, jsonReq("POST", "/api/v1/cart/items", fiber.Map{
		"productId": "amber-noir", "variantId": "amber-noir-320", "qty": 2,
	}), 200, nil)
	cookie := sid(resp)
	if cookie == nil {
		t.Fatal("first cart touch should mint a session cookie")
	}
	withSID := func(req *http.Request) *http.Request {
		req.AddCookie(cookie)
		return req
	}

	// 2 + 2 > 3 in stock for the 320g variant.
	var rejected struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	env.do(t, withSID(jsonReq("POST", "/api/v1/cart/items", fiber.Map{
		"productId": "amber-noir", "variantId": "amber-noir-320", "qty": 2,
	})), 409, &rejected)
	if rejected.Success || rejected.Error == "" {
		t.Fatalf("unexpected rejection payload: %+v", rejected)
	}

	var view struct {
		ItemCount int `json:"itemCount"`
	}
	env.do(t, withSID(jsonReq("GET", "/api/v1/cart", nil)), 200, &view)
	if view.ItemCount != 2 {
		t.Fatalf("rejected add must not change the cart, want 2, got %d", view.ItemCount)
	}

	env.do(t, withSID(jsonReq("POST", "/api/v1/cart/items/update", fiber.Map{
		"productId": "amber-noir", "variantId": "amber-noir-320", "qty": 5,
	})), 409, nil)
	env.do(t, withSID(jsonReq("POST", "/api/v1/cart/items/update", fiber.Map{
		"productId": "amber-noir", "variantId": "amber-noir-320", "qty": 3,
	})), 200, nil)
	env.do(t, withSID(jsonReq("POST", "/api/v1/cart/items/update", fiber.Map{
		"productId": "velluto-spray", "qty": 1,
	})), 404, nil)

	env.do(t, withSID(jsonReq("POST", "/api/v1/cart/items/remove", fiber.Map{
		"productId": "amber-noir",
	})), 200, nil)
	env.do(t, withSID(jsonReq("GET", "/api/v1/cart", nil)), 200, &view)
	if view.ItemCount != 0 {
		t.Fatalf("want empty cart after remove, got %d", view.ItemCount)
	}
}

func TestAdminInventoryRestock(t *testing.T) {
	env := newEnv(t, "")

	env.do(t, jsonReq("POST", "/admin/inventory", fiber.Map{"variantId": "fiori-floral", "qty": -1}), 400, nil)
	env.do(t, jsonReq("POST", "/admin/inventory", fiber.Map{"variantId": "no-such", "qty": 5}), 404, nil)

	env.do(t, jsonReq("POST", "/api/v1/notifications", fiber.Map{
		"productId": "fiori-di-sicilia", "variantId": "fiori-floral", "email": "anna@example.com",
	}), 201, nil)

	// The Floral variant is seeded at 0: going positive fires the waitlist.
	var got struct {
		Success  bool `json:"success"`
		Notified int  `json:"notified"`
	}
	env.do(t, jsonReq("POST", "/admin/inventory", fiber.Map{"variantId": "fiori-floral", "qty": 6}), 200, &got)
	if !got.Success || got.Notified != 1 {
		t.Fatalf("want 1 notified, got %+v", got)
	}
	if len(env.sender.sent) != 1 {
		t.Fatalf("want 1 mail, got %d", len(env.sender.sent))
	}
	if want := "Back in stock: Fiori di Sicilia (Floral)"; env.sender.sent[0].Subject != want {
		t.Fatalf("want subject %q, got %q", want, env.sender.sent[0].Subject)
	}

	var list struct {
		Notifications []notify.Subscription `json:"notifications"`
	}
	env.do(t, jsonReq("GET", "/api/v1/notifications?email=anna@example.com", nil), 200, &list)
	if len(list.Notifications) != 0 {
		t.Fatalf("notified subscription should leave the active view, got %d", len(list.Notifications))
	}

	// Positive to positive: no restock transition, nobody mailed.
	env.do(t, jsonReq("POST", "/admin/inventory", fiber.Map{"variantId": "fiori-floral", "qty": 8}), 200, &got)
	if got.Notified != 0 {
		t.Fatalf("want 0 notified on a non-transition, got %d", got.Notified)
	}

	var avail struct {
		Status string `json:"status"`
		Qty    int    `json:"qty"`
	}
	env.do(t, jsonReq("GET", "/api/v1/availability?productId=fiori-di-sicilia&variantId=fiori-floral", nil), 200, &avail)
	if avail.Status != "low_stock" || avail.Qty != 8 {
		t.Fatalf("restocked variant: want low_stock/8, got %s/%d", avail.Status, avail.Qty)
	}
}
