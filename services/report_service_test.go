package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clubday/models"
)

func TestSalesReport(t *testing.T) {
	svc, db := setupContainer(t)
	ctx := context.Background()
	table := createTable(t, db, 1, true)
	session := createSession(t, svc, table.ID, "Ana")

	_, err := svc.Orders.Submit(ctx, SubmitOrderInput{SessionID: session.ID, Items: sampleItems()})
	require.NoError(t, err)
	_, err = svc.Orders.Submit(ctx, SubmitOrderInput{
		SessionID: session.ID, DeliveryType: models.DeliveryCounter,
		Items: []SubmitItem{{Name: "Suco de laranja", UnitPrice: 8, Quantity: 3, Category: "bebidas"}},
	})
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	report, err := svc.Reports.Sales(ctx, from, to, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, report.OrderCount)
	assert.InDelta(t, 51.0, report.Revenue, 0.001)
	assert.Equal(t, "R$ 51,00", report.RevenueFormatted)
	assert.InDelta(t, 25.5, report.AverageTicket, 0.001)
	assert.InDelta(t, 27.0, report.ByDeliveryType["table"], 0.001)
	assert.InDelta(t, 24.0, report.ByDeliveryType["counter"], 0.001)
	require.Len(t, report.TopItems, 2)
	assert.Equal(t, "Suco de laranja", report.TopItems[0].Name)
	assert.Equal(t, 4, report.TopItems[0].Quantity)

	var buf bytes.Buffer
	require.NoError(t, svc.Reports.WriteSalesPDF(report, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	_, err = svc.Reports.Sales(ctx, to, from, 5)
	assert.ErrorIs(t, err, ErrValidation)
}
