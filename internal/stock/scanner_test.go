package stock

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"

	"github.com/rawises/storefront-backend/pkg/db/models"
	"github.com/rawises/storefront-backend/pkg/enums"
	"github.com/rawises/storefront-backend/pkg/logger"
)

type stubAlertLister struct {
	alerts []Alert
}

func (s *stubAlertLister) Alerts(ctx context.Context) ([]Alert, error) {
	return s.alerts, nil
}

type stubNotifier struct {
	received []Alert
}

func (s *stubNotifier) NotifyLowStock(ctx context.Context, alert Alert) error {
	s.received = append(s.received, alert)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func alertFor(id uuid.UUID, severity enums.StockAlertSeverity) Alert {
	return Alert{
		Product:  models.Product{ID: id, Name: "Serum"},
		Current:  2,
		Minimum:  10,
		Severity: severity,
	}
}

func TestScanNotifiesOnlySeverityTransitions(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	lister := &stubAlertLister{alerts: []Alert{alertFor(productID, enums.StockAlertLow)}}
	notifier := &stubNotifier{}

	scanner, err := NewScanner(ScannerParams{
		Logger:   testLogger(),
		Stock:    lister,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("NewScanner returned error: %v", err)
	}

	if err := scanner.Scan(ctx); err != nil {
		t.Fatalf("first scan returned error: %v", err)
	}
	if len(notifier.received) != 1 {
		t.Fatalf("first scan notified %d times, want 1", len(notifier.received))
	}

	// Unchanged severity stays quiet.
	if err := scanner.Scan(ctx); err != nil {
		t.Fatalf("second scan returned error: %v", err)
	}
	if len(notifier.received) != 1 {
		t.Fatalf("repeat scan notified again, total %d", len(notifier.received))
	}

	// Worsening severity notifies again.
	lister.alerts = []Alert{alertFor(productID, enums.StockAlertCritical)}
	if err := scanner.Scan(ctx); err != nil {
		t.Fatalf("third scan returned error: %v", err)
	}
	if len(notifier.received) != 2 {
		t.Fatalf("severity change notified %d times total, want 2", len(notifier.received))
	}
	if notifier.received[1].Severity != enums.StockAlertCritical {
		t.Fatalf("second notification severity = %q", notifier.received[1].Severity)
	}
}

func TestScanForgetsRecoveredProducts(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	lister := &stubAlertLister{alerts: []Alert{alertFor(productID, enums.StockAlertLow)}}
	notifier := &stubNotifier{}

	scanner, err := NewScanner(ScannerParams{
		Logger:   testLogger(),
		Stock:    lister,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("NewScanner returned error: %v", err)
	}

	if err := scanner.Scan(ctx); err != nil {
		t.Fatalf("scan returned error: %v", err)
	}

	// Product recovers, then dips again: that is a fresh alert.
	lister.alerts = nil
	if err := scanner.Scan(ctx); err != nil {
		t.Fatalf("scan returned error: %v", err)
	}
	lister.alerts = []Alert{alertFor(productID, enums.StockAlertLow)}
	if err := scanner.Scan(ctx); err != nil {
		t.Fatalf("scan returned error: %v", err)
	}

	if len(notifier.received) != 2 {
		t.Fatalf("notified %d times, want 2", len(notifier.received))
	}
}
