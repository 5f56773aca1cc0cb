package alert

import (
	"sync"
	"time"

	"candela/internal/domain"
	applog "candela/internal/log"
	"candela/internal/mail"
)

// Cooldown is the minimum interval between two alerts for the same
// (product, variant) key.
const Cooldown = 24 * time.Hour

// Check is the outcome of a low stock evaluation.
type Check struct {
	IsLowStock      bool `json:"isLowStock"`
	CurrentQuantity int  `json:"currentQuantity"`
	Threshold       int  `json:"threshold"`
}

// Key identifies what an alert was sent for.
type Key struct {
	ProductID string `json:"productId"`
	VariantID string `json:"variantId,omitempty"`
}

// CheckLowStock evaluates a product (or one of its variants) against the
// threshold. With a variant, low means 0 < qty <= threshold. Without one,
// any qualifying variant flags the product and the reported quantity is the
// highest among the qualifying variants. Product-level stock alone never
// triggers an alert; detection is variant-based.
func CheckLowStock(p domain.Product, v *domain.Variant, threshold int) Check {
	if v != nil {
		qty := v.Quantity()
		return Check{IsLowStock: qty > 0 && qty <= threshold, CurrentQuantity: qty, Threshold: threshold}
	}

	if p.HasVariants() {
		maxQty := 0
		low := false
		for _, pv := range p.Variants {
			qty := pv.Quantity()
			if qty > 0 && qty <= threshold {
				low = true
				if qty > maxQty {
					maxQty = qty
				}
			}
		}
		if low {
			return Check{IsLowStock: true, CurrentQuantity: maxQty, Threshold: threshold}
		}
	}

	return Check{Threshold: threshold}
}

// Alerter sends de-duplicated low stock alerts to the admin address. The
// cooldown table lives in memory and survives until process restart.
type Alerter struct {
	mu     sync.Mutex
	sent   map[string]time.Time
	sender mail.Sender
	clock  func() time.Time
}

type Option func(*Alerter)

// WithClock overrides the time source, for deterministic cooldown tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Alerter) { a.clock = clock }
}

func New(sender mail.Sender, opts ...Option) *Alerter {
	a := &Alerter{sent: make(map[string]time.Time), sender: sender, clock: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func alertKey(productID, variantID string) string {
	if variantID != "" {
		return productID + "_" + variantID
	}
	return productID
}

func (a *Alerter) sentRecentlyLocked(productID, variantID string) bool {
	last, ok := a.sent[alertKey(productID, variantID)]
	if !ok {
		return false
	}
	return a.clock().Sub(last) < Cooldown
}

// sendAlertLocked mails one alert and records the timestamp. A delivery
// failure is logged and the key is left unrecorded so the next run retries.
func (a *Alerter) sendAlertLocked(adminEmail string, p domain.Product, v *domain.Variant, check Check) bool {
	data := mail.LowStockData{
		ProductName:     p.Name,
		CurrentQuantity: check.CurrentQuantity,
		Threshold:       check.Threshold,
		SKU:             p.SKU,
	}
	subject := "Low stock alert: " + p.Name
	if v != nil {
		data.VariantValue = v.Value
		if v.SKU != "" {
			data.SKU = v.SKU
		}
		subject += " (" + v.Value + ")"
	}
	if data.SKU == "" {
		data.SKU = "N/A"
	}

	body, err := mail.LowStockAlertHTML(data)
	if err != nil {
		applog.Error(nil, "alert.render.fail", err, map[string]any{"product": p.ID})
		return false
	}
	if _, err := a.sender.Send(mail.Message{To: adminEmail, Subject: subject, HTML: body}); err != nil {
		applog.Error(nil, "alert.send.fail", err, map[string]any{"product": p.ID})
		return false
	}
	a.sent[alertKey(p.ID, variantID(v))] = a.clock()
	return true
}

func variantID(v *domain.Variant) string {
	if v == nil {
		return ""
	}
	return v.ID
}

// DispatchOne checks a single product (optionally one variant) and sends at
// most one alert, honoring the cooldown window.
func (a *Alerter) DispatchOne(adminEmail string, p domain.Product, v *domain.Variant, threshold int) []Key {
	a.mu.Lock()
	defer a.mu.Unlock()

	alerted := []Key{}
	check := CheckLowStock(p, v, threshold)
	if check.IsLowStock && !a.sentRecentlyLocked(p.ID, variantID(v)) {
		if a.sendAlertLocked(adminEmail, p, v, check) {
			alerted = append(alerted, Key{ProductID: p.ID, VariantID: variantID(v)})
		}
	}
	return alerted
}

// DispatchMany walks each product's variants (or the product itself when it
// has none) and sends one alert per low-stock key outside its cooldown.
// Sends are best-effort: one failure never aborts the rest of the batch.
func (a *Alerter) DispatchMany(adminEmail string, products []domain.Product, threshold int) []Key {
	a.mu.Lock()
	defer a.mu.Unlock()

	alerted := []Key{}
	for i := range products {
		p := products[i]
		if p.HasVariants() {
			for j := range p.Variants {
				v := &p.Variants[j]
				check := CheckLowStock(p, v, threshold)
				if !check.IsLowStock || a.sentRecentlyLocked(p.ID, v.ID) {
					continue
				}
				if a.sendAlertLocked(adminEmail, p, v, check) {
					alerted = append(alerted, Key{ProductID: p.ID, VariantID: v.ID})
				}
			}
			continue
		}
		check := CheckLowStock(p, nil, threshold)
		if !check.IsLowStock || a.sentRecentlyLocked(p.ID, "") {
			continue
		}
		if a.sendAlertLocked(adminEmail, p, nil, check) {
			alerted = append(alerted, Key{ProductID: p.ID})
		}
	}
	return alerted
}
