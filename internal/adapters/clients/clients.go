// Package clients provides centralized client initialization with dependency injection.
//
// This package eliminates duplicated client setup code across commands by
// providing a single point of initialization for the external collaborators:
// the expense ledger backend and the receipt OCR scanner.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	cl := clients.NewClients(cfg)
//	// Use cl.Ledger, cl.Scanner
package clients

import (
	"github.com/spendlens/receipt-review-backend/internal/infrastructure/config"
)

// Clients holds all initialized service clients
type Clients struct {
	Ledger  *LedgerClient
	Scanner *ScannerClient
}

// NewClients initializes all service clients from configuration
func NewClients(cfg *config.Config) *Clients {
	return &Clients{
		Ledger:  NewLedgerClient(cfg.Ledger),
		Scanner: NewScannerClient(cfg.Scanner),
	}
}
