package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"sucursalpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertaStockPayload is the job envelope sent to QueueAlertasStock whenever a
// sale leaves a product at or below its stock minimum.
type AlertaStockPayload struct {
	ProductoID string `json:"producto_id"`
	Producto   string `json:"producto"`
	SucursalID string `json:"sucursal_id"`
	Stock      int    `json:"stock"`
}

// StockAlertWorker mails low-stock notifications to the configured address.
type StockAlertWorker struct {
	mailer *infra.Mailer
	to     string
}

func NewStockAlertWorker(mailer *infra.Mailer, to string) *StockAlertWorker {
	return &StockAlertWorker{mailer: mailer, to: to}
}

func (w *StockAlertWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_alert_worker: invalid payload")
		return
	}
	if w.to == "" {
		log.Warn().Msg("stock_alert_worker: ALERT_EMAIL not configured — skipping")
		return
	}

	subject := fmt.Sprintf("Stock bajo: %s", payload.Producto)
	body := fmt.Sprintf(
		"El producto %s (id %s, sucursal %s) quedó con stock %d.\nReponga inventario a la brevedad.",
		payload.Producto, payload.ProductoID, payload.SucursalID, payload.Stock,
	)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		log.Error().Err(err).Str("producto_id", payload.ProductoID).Msg("stock_alert_worker: failed to send alert")
		return
	}
	log.Info().Str("producto_id", payload.ProductoID).Int("stock", payload.Stock).Msg("stock_alert_worker: alert sent")
}
