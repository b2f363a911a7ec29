package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/pkg/enums"
	"github.com/rawises/storefront-backend/pkg/logger"
)

const defaultScanInterval = 30 * time.Second

type alertLister interface {
	Alerts(ctx context.Context) ([]Alert, error)
}

type lowStockNotifier interface {
	NotifyLowStock(ctx context.Context, alert Alert) error
}

// ScannerParams configure the low-stock scan job.
type ScannerParams struct {
	Logger   *logger.Logger
	Stock    alertLister
	Notifier lowStockNotifier
	Interval time.Duration
}

// Scanner polls stock levels and raises a notification whenever a product
// enters a worse severity band. Repeat scans of an unchanged condition stay
// silent so a 30-second cadence cannot flood the feed.
type Scanner struct {
	logg     *logger.Logger
	stock    alertLister
	notifier lowStockNotifier
	interval time.Duration
	seen     map[uuid.UUID]enums.StockAlertSeverity
}

// NewScanner builds the scan job.
func NewScanner(params ScannerParams) (*Scanner, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock service required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultScanInterval
	}
	return &Scanner{
		logg:     params.Logger,
		stock:    params.Stock,
		notifier: params.Notifier,
		interval: interval,
		seen:     map[uuid.UUID]enums.StockAlertSeverity{},
	}, nil
}

// Run starts the scan loop until the context is canceled.
func (s *Scanner) Run(ctx context.Context) error {
	if err := s.Scan(ctx); err != nil {
		s.logg.Error(ctx, "low-stock scan failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "low-stock scanner context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Scan(ctx); err != nil {
				s.logg.Error(ctx, "low-stock scan failed", err)
			}
		}
	}
}

// Scan runs one cycle and notifies severity transitions.
func (s *Scanner) Scan(ctx context.Context) error {
	alerts, err := s.stock.Alerts(ctx)
	if err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}

	active := map[uuid.UUID]enums.StockAlertSeverity{}
	notified := 0
	for _, alert := range alerts {
		active[alert.Product.ID] = alert.Severity
		if s.seen[alert.Product.ID] == alert.Severity {
			continue
		}
		if err := s.notifier.NotifyLowStock(ctx, alert); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "product_id", alert.Product.ID.String()), "low-stock notification failed", err)
			continue
		}
		notified++
	}
	s.seen = active

	if notified > 0 {
		logCtx := s.logg.WithFields(ctx, map[string]any{"alerts": len(alerts), "notified": notified})
		s.logg.Info(logCtx, "low-stock scan complete")
	}
	return nil
}
