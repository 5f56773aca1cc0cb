package mail

import (
	"bytes"
	"html/template"
)

// LowStockData fills the admin low stock alert body.
type LowStockData struct {
	ProductName     string
	VariantValue    string
	CurrentQuantity int
	Threshold       int
	SKU             string
}

// RestockData fills the customer back-in-stock body.
type RestockData struct {
	ProductName  string
	VariantValue string
	ProductURL   string
	SKU          string
}

var lowStockTmpl = template.Must(template.New("lowstock").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #ff9800; color: white; padding: 20px; text-align: center;">
      <h1>Low Stock Alert</h1>
    </div>
    <div style="padding: 20px; background-color: #f9f9f9;">
      <p>The following product has reached its minimum stock level:</p>
      <div style="background-color: white; padding: 15px; border-left: 4px solid #ff9800;">
        <h2>{{.ProductName}}{{if .VariantValue}} (Variant: {{.VariantValue}}){{end}}</h2>
        <p><strong>SKU:</strong> {{.SKU}}</p>
        <p style="font-size: 24px; font-weight: bold; color: #ff9800;">Current quantity: {{.CurrentQuantity}}</p>
        <p><strong>Threshold:</strong> {{.Threshold}} units</p>
      </div>
      <p>Please review and restock if necessary.</p>
    </div>
    <div style="text-align: center; padding: 20px; color: #666; font-size: 12px;">
      <p>Automated message from the stock management system.</p>
    </div>
  </div>
</body>
</html>`))

var restockTmpl = template.Must(template.New("restock").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #2e7d32; color: white; padding: 20px; text-align: center;">
      <h1>Back in Stock</h1>
    </div>
    <div style="padding: 20px; background-color: #f9f9f9;">
      <p>Good news! The product you were waiting for is available again:</p>
      <div style="background-color: white; padding: 15px; border-left: 4px solid #2e7d32;">
        <h2>{{.ProductName}}{{if .VariantValue}} (Variant: {{.VariantValue}}){{end}}</h2>
        <p><strong>SKU:</strong> {{.SKU}}</p>
      </div>
      <p style="text-align: center;">
        <a href="{{.ProductURL}}" style="display: inline-block; padding: 12px 24px; background-color: #2e7d32; color: white; text-decoration: none; border-radius: 4px;">View Product</a>
      </p>
    </div>
    <div style="text-align: center; padding: 20px; color: #666; font-size: 12px;">
      <p>Automated message from the stock notification system.</p>
      <p><a href="{{.ProductURL}}?unsubscribe=true">Unsubscribe</a></p>
    </div>
  </div>
</body>
</html>`))

// LowStockAlertHTML renders the admin alert body.
func LowStockAlertHTML(d LowStockData) (string, error) {
	var buf bytes.Buffer
	if err := lowStockTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RestockAvailableHTML renders the customer restock body.
func RestockAvailableHTML(d RestockData) (string, error) {
	var buf bytes.Buffer
	if err := restockTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
