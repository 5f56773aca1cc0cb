package handlers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"candela/internal/repos"
)

func TestWishlistAPI(t *testing.T) {
	env := newEnv(t, "")

	env.do(t, jsonReq("POST", "/api/v1/wishlist", fiber.Map{}), 400, nil)

	resp := env.do(t, jsonReq("POST", "/api/v1/wishlist", fiber.Map{"productId": "amber-noir"}), 200, nil)
	cookie := sid(resp)
	if cookie == nil {
		t.Fatal("first wishlist touch should mint a session cookie")
	}

	req := jsonReq("POST", "/api/v1/wishlist", fiber.Map{"productId": "velluto-spray"})
	req.AddCookie(cookie)
	env.do(t, req, 200, nil)

	// Saving the same product twice keeps a single row.
	req = jsonReq("POST", "/api/v1/wishlist", fiber.Map{"productId": "amber-noir"})
	req.AddCookie(cookie)
	env.do(t, req, 200, nil)

	var list struct {
		Items []repos.WishlistRow `json:"items"`
	}
	req = jsonReq("GET", "/api/v1/wishlist", nil)
	req.AddCookie(cookie)
	env.do(t, req, 200, &list)
	if len(list.Items) != 2 {
		t.Fatalf("want 2 wishlist rows, got %d", len(list.Items))
	}
	if list.Items[0].Name != "Amber Noir" {
		t.Fatalf("rows should come back ordered by name, got %+v", list.Items)
	}

	req = jsonReq("POST", "/api/v1/wishlist/delete", fiber.Map{"productId": "amber-noir"})
	req.AddCookie(cookie)
	env.do(t, req, 200, nil)

	req = jsonReq("GET", "/api/v1/wishlist", nil)
	req.AddCookie(cookie)
	env.do(t, req, 200, &list)
	if len(list.Items) != 1 || list.Items[0].ProductID != "velluto-spray" {
		t.Fatalf("want only velluto-spray left, got %+v", list.Items)
	}

	// A fresh session sees an empty wishlist.
	env.do(t, jsonReq("GET", "/api/v1/wishlist", nil), 200, &list)
	if len(list.Items) != 0 {
		t.Fatalf("fresh session should start empty, got %+v", list.Items)
	}
}
