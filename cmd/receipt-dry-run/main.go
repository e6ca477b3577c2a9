// Command receipt-dry-run takes a scan-result JSON file, runs the tax
// distribution and category aggregation exactly as a submit would, and
// prints the expense requests without sending anything to the ledger.
//
// Usage:
//
//	receipt-dry-run -file scan_result.json
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spendlens/receipt-review-backend/internal/domain/aggregator"
	"github.com/spendlens/receipt-review-backend/internal/scan"
)

func main() {
	file := flag.String("file", "", "Path to a scan-result JSON file")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: receipt-dry-run -file scan_result.json")
		os.Exit(1)
	}

	if err := run(*file); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := scan.ParseResult(data)
	if err != nil {
		return fmt.Errorf("parsing scan result: %w", err)
	}
	if err := result.Validate(); err != nil {
		return err
	}

	receipt := result.Data
	now := time.Now()

	if !receipt.IsStore() {
		expense := scan.BuildUtilityExpense(receipt, now)
		fmt.Printf("Utility receipt (%s)\n", receipt.Merchant)
		printExpense(expense)
		return nil
	}

	d := scan.BuildDraft(receipt, now)

	fmt.Printf("Store receipt: %s (%s)\n", d.Merchant, d.Date)
	fmt.Printf("  %-10s %-10s %-26s %s\n", "amount", "tax share", "category", "description")
	for _, item := range d.Items {
		fmt.Printf("  %-10s %-10s %-26s %s\n", item.Amount, item.TaxShare, item.Category, item.Description)
	}
	fmt.Printf("Subtotal: %.2f  Tax: %s  Total: %.2f\n\n", d.Subtotal, d.Tax, d.Total)

	expenses, err := aggregator.AggregateByCategory(d)
	if err != nil {
		return err
	}

	fmt.Printf("Would create %d expense record(s):\n", len(expenses))
	for _, expense := range expenses {
		printExpense(expense)
	}
	return nil
}

func printExpense(expense aggregator.ExpenseCreate) {
	category := "-"
	if expense.Category != nil {
		category = *expense.Category
	}
	description := ""
	if expense.Description != nil {
		description = *expense.Description
	}
	fmt.Printf("  %8.2f  %s  %-26s %s\n", expense.Amount, expense.Date, category, description)
}
