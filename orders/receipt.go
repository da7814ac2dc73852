package orders

import (
	"bytes"
	"fmt"

	"plantnet/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// RenderReceipt builds a one-page PDF receipt with a QR code of the order id.
func RenderReceipt(o *models.Order, plantName string) ([]byte, error) {
	orderID := o.ID.Hex()

	qrPNG, err := qrcode.Encode("order:"+orderID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode receipt qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Order ID: " + orderID,
		"Date: " + o.CreatedAt.Format("2006-01-02 15:04 MST"),
		"Plant: " + plantName,
		fmt.Sprintf("Quantity: %d", o.Quantity),
		fmt.Sprintf("Total: %.2f", o.Price),
		"Status: " + o.Status,
		"Customer: " + o.Customer.Email,
		"Seller: " + o.SellerEmail,
	}
	for _, l := range lines {
		pdf.Cell(0, 10, l)
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
