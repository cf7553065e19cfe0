package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/yeremiapane/clubday/models"
	"github.com/yeremiapane/clubday/utils"
	"gorm.io/gorm"
)

type ItemSales struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type SalesReport struct {
	From             time.Time          `json:"from"`
	To               time.Time          `json:"to"`
	OrderCount       int                `json:"order_count"`
	DeliveredCount   int                `json:"delivered_count"`
	Revenue          float64            `json:"revenue"`
	RevenueFormatted string             `json:"revenue_formatted"`
	AverageTicket    float64            `json:"average_ticket"`
	AvgPrepMinutes   float64            `json:"avg_prep_minutes"`
	ByDeliveryType   map[string]float64 `json:"by_delivery_type"`
	ByStatus         map[string]int     `json:"by_status"`
	TopItems         []ItemSales        `json:"top_items"`
}

type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Sales aggregates orders created in [from, to).
func (s *ReportService) Sales(ctx context.Context, from, to time.Time, top int) (*SalesReport, error) {
	if !to.After(from) {
		return nil, validationError(fmt.Errorf("to must be after from"))
	}
	if top <= 0 {
		top = 10
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("created_at >= ? AND created_at < ?", from, to).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	report := &SalesReport{
		From:           from,
		To:             to,
		OrderCount:     len(orders),
		ByDeliveryType: map[string]float64{},
		ByStatus:       map[string]int{},
	}

	revenue := decimal.Zero
	byType := map[string]decimal.Decimal{}
	items := map[string]*ItemSales{}
	itemRevenue := map[string]decimal.Decimal{}
	var prepMinutes []float64

	for _, o := range orders {
		report.ByStatus[string(o.Status)]++
		if o.Status == models.OrderStatusDelivered {
			report.DeliveredCount++
		}
		if o.PreparingAt != nil && o.ReadyAt != nil {
			prepMinutes = append(prepMinutes, o.ReadyAt.Sub(*o.PreparingAt).Minutes())
		}

		orderTotal := decimal.Zero
		for _, it := range o.OrderItems {
			line := decimal.NewFromFloat(it.UnitPrice).Mul(decimal.NewFromInt(int64(it.Quantity)))
			orderTotal = orderTotal.Add(line)

			key := it.Category + "\x00" + it.ItemName
			agg, ok := items[key]
			if !ok {
				agg = &ItemSales{Name: it.ItemName, Category: it.Category}
				items[key] = agg
			}
			agg.Quantity += it.Quantity
			itemRevenue[key] = itemRevenue[key].Add(line)
		}
		revenue = revenue.Add(orderTotal)
		byType[string(o.DeliveryType)] = byType[string(o.DeliveryType)].Add(orderTotal)
	}

	report.Revenue = revenue.Round(2).InexactFloat64()
	report.RevenueFormatted = utils.FormatDecimalBRL(revenue)
	if report.OrderCount > 0 {
		report.AverageTicket = revenue.Div(decimal.NewFromInt(int64(report.OrderCount))).Round(2).InexactFloat64()
	}
	if len(prepMinutes) > 0 {
		report.AvgPrepMinutes = decimal.NewFromFloat(lo.Sum(prepMinutes) / float64(len(prepMinutes))).Round(1).InexactFloat64()
	}
	for k, v := range byType {
		report.ByDeliveryType[k] = v.Round(2).InexactFloat64()
	}

	ranked := make([]ItemSales, 0, len(items))
	for key, agg := range items {
		agg.Revenue = itemRevenue[key].Round(2).InexactFloat64()
		ranked = append(ranked, *agg)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > top {
		ranked = ranked[:top]
	}
	report.TopItems = ranked
	return report, nil
}

// renderTopItemsChart draws the top items as a PNG bar chart. It returns
// nil when there is nothing to plot.
func renderTopItemsChart(items []ItemSales) ([]byte, error) {
	bars := lo.FilterMap(items, func(it ItemSales, _ int) (chart.Value, bool) {
		return chart.Value{Value: float64(it.Quantity), Label: it.Name}, it.Quantity > 0
	})
	if len(bars) == 0 {
		return nil, nil
	}
	peak := lo.MaxBy(bars, func(a, b chart.Value) bool { return a.Value > b.Value }).Value

	graph := chart.BarChart{
		Title:      "Itens mais vendidos",
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Width:      900,
		Height:     400,
		BarWidth:   50,
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: peak * 1.2}},
		Bars:       bars,
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSalesPDF renders the report as an A4 PDF.
func (s *ReportService) WriteSalesPDF(report *SalesReport, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Relatorio de vendas", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Relatório de vendas"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	period := fmt.Sprintf("%s a %s", report.From.Format("02/01/2006 15:04"), report.To.Format("02/01/2006 15:04"))
	pdf.CellFormat(0, 6, tr("Período: "+period), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	summary := [][2]string{
		{"Pedidos", fmt.Sprintf("%d", report.OrderCount)},
		{"Entregues", fmt.Sprintf("%d", report.DeliveredCount)},
		{"Faturamento", report.RevenueFormatted},
		{"Ticket médio", utils.FormatCurrencyBRL(report.AverageTicket)},
		{"Preparo médio (min)", fmt.Sprintf("%.1f", report.AvgPrepMinutes)},
		{"Mesa", utils.FormatCurrencyBRL(report.ByDeliveryType[string(models.DeliveryTable)])},
		{"Balcão", utils.FormatCurrencyBRL(report.ByDeliveryType[string(models.DeliveryCounter)])},
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, row := range summary {
		pdf.CellFormat(60, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, tr(row[1]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Categoria", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Qtd", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Receita", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, it := range report.TopItems {
		pdf.CellFormat(80, 6, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(it.Category), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", it.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, tr(utils.FormatCurrencyBRL(it.Revenue)), "1", 1, "R", false, 0, "")
	}

	img, err := renderTopItemsChart(report.TopItems)
	if err != nil {
		utils.ErrorLogger.Printf("Error rendering sales chart: %v", err)
	} else if img != nil {
		pdf.Ln(6)
		opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("top_items", opts, bytes.NewReader(img))
		pdf.ImageOptions("top_items", 10, pdf.GetY(), 190, 0, false, opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
