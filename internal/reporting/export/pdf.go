package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/writemytrip/ownerdesk/internal/reporting"
	"github.com/writemytrip/ownerdesk/internal/reporting/svg"
)

// FinancePayload aggregates the data of one finance PDF.
type FinancePayload struct {
	Branding    reporting.Branding
	Report      reporting.FinanceReport
	View        reporting.FinanceView
	GeneratedAt time.Time
	Notice      string
}

// PDFExporter wraps Gotenberg interactions for finance exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// RenderFinance sends the finance HTML to Gotenberg and returns the PDF
// bytes.
func (p *PDFExporter) RenderFinance(ctx context.Context, payload FinancePayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	html, err := FinanceHTML(payload)
	if err != nil {
		return nil, err
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500ms"); err != nil {
		return nil, err
	}
	if err := writer.WriteField("printBackground", "true"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

type metricRow struct {
	Label string
	Value string
}

type monthRow struct {
	Month, Revenue, Net, Manual, Combined string
	Bookings                              int
}

type financeView struct {
	Business  string
	LogoURL   string
	Year      int
	View      string
	Generated string
	Notice    string
	Chart     template.HTML
	Headline  []metricRow
	KPIs      []metricRow
	Months    []monthRow
}

var financeTemplate = template.Must(template.New("finance").Parse(`<html><head><meta charset="utf-8"><style>
body{font-family:sans-serif;margin:24px;color:#0f172a}h1{font-size:20px;margin:0}h2{font-size:15px;margin-top:24px}
header{display:flex;align-items:center;gap:12px}header img{height:40px}
.notice{background:#fef3c7;padding:8px;border-radius:4px}
table{width:100%;border-collapse:collapse;margin-bottom:16px}th,td{border:1px solid #e2e8f0;padding:6px;text-align:right}th{background:#f1f5f9}
td.label,th.label{text-align:left}
</style></head><body>
<header>{{if .LogoURL}}<img src="{{.LogoURL}}" alt="">{{end}}<div><h1>{{.Business}} · Finance {{.Year}}</h1><small>{{.View}} view · generated {{.Generated}}</small></div></header>
{{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
<section><h2>Summary</h2><table><tbody>{{range .Headline}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</tbody></table></section>
<section><h2>Revenue trend (₹k)</h2>{{.Chart}}</section>
<section><h2>Key metrics</h2><table><tbody>{{range .KPIs}}<tr><td class="label">{{.Label}}</td><td>{{.Value}}</td></tr>{{end}}</tbody></table></section>
<section><h2>Monthly ledger</h2><table><thead><tr><th class="label">Month</th><th>Bookings</th><th>Revenue</th><th>Net</th><th>Manual net</th><th>Combined net</th></tr></thead><tbody>
{{range .Months}}<tr><td class="label">{{.Month}}</td><td>{{.Bookings}}</td><td>{{.Revenue}}</td><td>{{.Net}}</td><td>{{.Manual}}</td><td>{{.Combined}}</td></tr>{{end}}
</tbody></table></section>
</body></html>`))

// FinanceHTML renders the document Gotenberg converts to PDF.
func FinanceHTML(payload FinancePayload) (string, error) {
	report := payload.Report
	display := report.Display(payload.View)

	labels := make([]string, len(display.Series))
	revenue := make([]float64, len(display.Series))
	net := make([]float64, len(display.Series))
	for i, point := range display.Series {
		labels[i] = point.Month
		revenue[i] = reporting.Thousands(point.Revenue)
		net[i] = reporting.Thousands(point.Net)
	}
	var chart template.HTML
	if len(labels) > 0 {
		var err error
		chart, err = svg.Bars(svg.DefaultWidth, svg.DefaultHeight, revenue, net, labels, svg.BarOpts{
			Title:        "Revenue trend",
			Description:  "Revenue and net per month in thousands of rupees",
			SeriesALabel: "Revenue",
			SeriesBLabel: "Net",
			TickPrefix:   "₹",
			TickSuffix:   "k",
		})
		if err != nil {
			return "", err
		}
	}

	t := report.Totals
	k := report.KPIs
	view := financeView{
		Business: payload.Branding.DisplayName(),
		LogoURL:  payload.Branding.LogoURL,
		Year:     report.Year,
		View:     string(display.View),
		Notice:   payload.Notice,
		Chart:    chart,
		Headline: []metricRow{
			{"Revenue", reporting.FormatINR(display.Revenue)},
			{"Net", reporting.FormatINR(display.Net)},
			{"Total earnings", reporting.FormatINR(t.TotalEarnings)},
			{"Commission", reporting.FormatINR(t.TotalCommission)},
			{"Manual income", reporting.FormatINR(t.ManualIncome)},
			{"Manual expenses", reporting.FormatINR(t.ManualExpenses)},
		},
		KPIs: []metricRow{
			{"Occupancy (approx.)", fmt.Sprintf("%.1f%%", k.Occupancy.Rate)},
			{"Average daily rate", reporting.FormatINR(k.AverageDailyRate)},
			{"RevPAR", reporting.FormatINR(k.AverageRevPAR)},
			{"Guest rating", fmt.Sprintf("%.1f", k.GuestRating)},
			{"Commission rate", k.CommissionRatePercent.StringFixed(0) + "%"},
			{"Pending payouts", reporting.FormatINR(k.PendingPayouts)},
		},
	}
	if !payload.GeneratedAt.IsZero() {
		view.Generated = payload.GeneratedAt.Format("02 Jan 2006 15:04")
	}
	for _, m := range report.Months {
		view.Months = append(view.Months, monthRow{
			Month:    m.Month,
			Bookings: m.Bookings,
			Revenue:  reporting.FormatINR(m.Revenue),
			Net:      reporting.FormatINR(m.Net),
			Manual:   reporting.FormatINR(m.ManualNet),
			Combined: reporting.FormatINR(m.CombinedNet),
		})
	}

	var buf bytes.Buffer
	if err := financeTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
