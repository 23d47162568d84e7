// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/asset-tracker/internal/config"
	"github.com/your-org/asset-tracker/internal/domain/asset"
	"github.com/your-org/asset-tracker/internal/domain/base"
	"github.com/your-org/asset-tracker/internal/domain/purchase"
)

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// GeneratePurchaseOrder generates a printable purchase order document
func (s *Service) GeneratePurchaseOrder(p *purchase.Purchase, a *asset.Asset, b *base.Base) (*bytes.Buffer, error) {
	data := PurchaseOrderData{
		DocumentDate: time.Now().Format("January 2, 2006"),
		Purchase:     p,
		Asset:        a,
		Base:         b,
		TotalCost:    formatCents(p.TotalCost),
		UnitCost:     formatCents(p.UnitCost),
		Command: CommandInfo{
			Name:    s.config.App.CommandName,
			Address: s.config.App.CommandAddress,
		},
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader([]byte(htmlContent)))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func (s *Service) generateHTML(data PurchaseOrderData) (string, error) {
	tmpl := template.Must(template.New("purchase_order").Parse(purchaseOrderTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func formatCents(amount int64) string {
	return fmt.Sprintf("$%.2f", float64(amount)/100)
}

// PurchaseOrderData represents the data passed to the document template
type PurchaseOrderData struct {
	DocumentDate string             `json:"document_date"`
	Purchase     *purchase.Purchase `json:"purchase"`
	Asset        *asset.Asset       `json:"asset"`
	Base         *base.Base         `json:"base"`
	UnitCost     string             `json:"unit_cost"`
	TotalCost    string             `json:"total_cost"`
	Command      CommandInfo        `json:"command"`
}

// CommandInfo represents the issuing command
type CommandInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Purchase order HTML template
const purchaseOrderTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Purchase Order {{.Purchase.PurchaseNumber}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 0;
            padding: 20px;
            color: #333;
        }
        .header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 30px;
            border-bottom: 2px solid #eee;
            padding-bottom: 20px;
        }
        .document-title {
            font-size: 28px;
            font-weight: bold;
            color: #1f2937;
            margin-bottom: 10px;
        }
        .details table {
            width: 100%;
            border-collapse: collapse;
            margin-bottom: 30px;
        }
        .details th {
            text-align: left;
            background: #f3f4f6;
            padding: 8px;
            border-bottom: 1px solid #d1d5db;
        }
        .details td {
            padding: 8px;
            border-bottom: 1px solid #e5e7eb;
        }
        .label {
            font-weight: bold;
            width: 200px;
        }
        .totals {
            text-align: right;
            font-size: 16px;
            font-weight: bold;
        }
        .footer {
            margin-top: 60px;
            display: flex;
            justify-content: space-between;
        }
        .signature {
            border-top: 1px solid #333;
            width: 250px;
            padding-top: 5px;
            font-size: 12px;
        }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <div class="document-title">PURCHASE ORDER</div>
            <div>{{.Command.Name}}</div>
            <div>{{.Command.Address}}</div>
        </div>
        <div>
            <div><strong>{{.Purchase.PurchaseNumber}}</strong></div>
            <div>{{.DocumentDate}}</div>
            <div>Status: {{.Purchase.Status}}</div>
        </div>
    </div>

    <div class="details">
        <table>
            <tr><td class="label">Destination Base</td><td>{{.Base.Name}} ({{.Base.Code}})</td></tr>
            <tr><td class="label">Supplier</td><td>{{.Purchase.SupplierName}}</td></tr>
            <tr><td class="label">Supplier Contact</td><td>{{.Purchase.SupplierContact}}</td></tr>
        </table>

        <table>
            <tr>
                <th>Item</th>
                <th>Serial</th>
                <th>Unit</th>
                <th>Quantity</th>
                <th>Unit Cost</th>
                <th>Total</th>
            </tr>
            <tr>
                <td>{{.Asset.Name}}</td>
                <td>{{.Asset.SerialNumber}}</td>
                <td>{{.Asset.UnitOfMeasure}}</td>
                <td>{{.Purchase.Quantity}}</td>
                <td>{{.UnitCost}}</td>
                <td>{{.TotalCost}}</td>
            </tr>
        </table>

        <div class="totals">Total: {{.TotalCost}}</div>
    </div>

    {{if .Purchase.Notes}}
    <div><strong>Notes:</strong> {{.Purchase.Notes}}</div>
    {{end}}

    <div class="footer">
        <div class="signature">Requested By</div>
        <div class="signature">Approved By</div>
    </div>
</body>
</html>
`
