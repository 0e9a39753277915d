package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/openkassa/kassaterm/internal/models"
)

// MaxImportLines bounds a bulk import blob.
const MaxImportLines = 1000

// Plan is the outcome of parsing an import blob against the existing
// catalog. It is pure data: the repository applies Inserts and Updates
// in one transaction, Result goes back to the caller as-is.
type Plan struct {
	Inserts []*models.Product
	Updates []*models.Product
	Result  models.ImportResult
}

// PlanImport parses a newline-delimited "name, price" blob. Each
// non-blank line is split on the first comma; lines that do not split
// into two parts, have an empty name, or a non-numeric/non-positive
// price are collected as per-line errors and skipped. Valid lines are
// applied even when others fail. Name matching against the existing
// catalog (and against lines already planned) is case-insensitive; a
// match updates the price instead of inserting a duplicate.
//
// Only a blob over the line limit is a hard error.
func PlanImport(blob string, existing []*models.Product) (*Plan, error) {
	lines := strings.Split(blob, "\n")
	if len(lines) > MaxImportLines {
		return nil, fmt.Errorf("import exceeds the %d line limit: got %d lines", MaxImportLines, len(lines))
	}

	byName := make(map[string]*models.Product, len(existing))
	for _, product := range existing {
		byName[strings.ToLower(product.Name)] = product
	}

	plan := &Plan{}
	planned := make(map[string]*models.Product)

	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		name, price, err := parseLine(trimmed)
		if err != nil {
			plan.Result.Errors = append(plan.Result.Errors, models.ImportLineError{
				Line:    lineNo,
				Message: err.Error(),
				Text:    line,
			})
			continue
		}

		key := strings.ToLower(name)
		if product, seen := planned[key]; seen {
			product.Price = price
			plan.Result.Updated++
			continue
		}
		if product, known := byName[key]; known {
			updated := *product
			updated.Price = price
			plan.Updates = append(plan.Updates, &updated)
			planned[key] = &updated
			plan.Result.Updated++
			continue
		}

		inserted := &models.Product{
			ID:    uuid.NewString(),
			Name:  name,
			Price: price,
		}
		plan.Inserts = append(plan.Inserts, inserted)
		planned[key] = inserted
		plan.Result.Added++
	}

	return plan, nil
}

func parseLine(line string) (string, decimal.Decimal, error) {
	parts := strings.SplitN(line, ",", 2)
	if len(parts) != 2 {
		return "", decimal.Zero, fmt.Errorf("line must have the form \"name, price\"")
	}

	name := strings.TrimSpace(parts[0])
	if name == "" {
		return "", decimal.Zero, fmt.Errorf("product name cannot be empty")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("price must be a number")
	}
	if !price.IsPositive() {
		return "", decimal.Zero, fmt.Errorf("price must be positive")
	}

	return name, price, nil
}
