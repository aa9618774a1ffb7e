package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

// ListActions derives follow-up items from the metadata of a processed
// document and keeps those matching filter.
func (q *DocumentQueries) ListActions(ctx context.Context, id string, filter domain.ActionFilter) ([]domain.ActionableItem, error) {
	result, err := q.store.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}

	var actions []domain.ActionableItem
	switch result.Classification.Type {
	case "invoice":
		actions = invoiceActions(result.Metadata)
	case "contract":
		actions = contractActions(result.Metadata)
	case q.registry.Fallback():
		actions = generalActions(result.Metadata)
	}

	out := make([]domain.ActionableItem, 0, len(actions))
	for _, a := range actions {
		if matchesFilter(a, filter) {
			out = append(out, a)
		}
	}
	q.logger.Info("actionable_items_listed", "document_id", result.ID, "count", len(out))
	return out, nil
}

func matchesFilter(a domain.ActionableItem, f domain.ActionFilter) bool {
	if f.Status != "" && string(a.Status) != f.Status {
		return false
	}
	// Items without a deadline are never excluded by the deadline filter.
	if f.Deadline != "" && a.Deadline != "" && a.Deadline != f.Deadline {
		return false
	}
	if f.Priority != "" && string(a.Priority) != f.Priority {
		return false
	}
	return true
}

func invoiceActions(md domain.Metadata) []domain.ActionableItem {
	var out []domain.ActionableItem
	amount, dueDate, vendor := md["amount"], md["due_date"], md["vendor"]
	if truthy(amount) && truthy(dueDate) {
		vendorName := "unknown vendor"
		if truthy(vendor) {
			vendorName = valueText(vendor)
		}
		out = append(out, domain.ActionableItem{
			Description: fmt.Sprintf("Pay invoice for %s from %s.", valueText(amount), vendorName),
			Status:      domain.ActionPending,
			Deadline:    valueText(dueDate),
			Priority:    domain.PriorityHigh,
			SourceField: "amount, due_date",
		})
	}
	items, _ := md[domain.LineItemsField].([]any)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || !truthy(obj["description"]) {
			continue
		}
		out = append(out, domain.ActionableItem{
			Description: "Review line item: " + valueText(obj["description"]),
			Status:      domain.ActionPending,
			Priority:    domain.PriorityMedium,
			SourceField: domain.LineItemsField,
		})
	}
	return out
}

func contractActions(md domain.Metadata) []domain.ActionableItem {
	var out []domain.ActionableItem
	if effective := md["effective_date"]; truthy(effective) {
		out = append(out, domain.ActionableItem{
			Description: fmt.Sprintf("Acknowledge contract effective on %s.", valueText(effective)),
			Status:      domain.ActionCompleted,
			Priority:    domain.PriorityLow,
			SourceField: "effective_date",
		})
	}
	if termination := md["termination_date"]; truthy(termination) {
		out = append(out, domain.ActionableItem{
			Description: fmt.Sprintf("Review contract for termination on %s.", valueText(termination)),
			Status:      domain.ActionPending,
			Deadline:    valueText(termination),
			Priority:    domain.PriorityHigh,
			SourceField: "termination_date",
		})
	}
	terms, _ := md["key_terms"].([]any)
	for _, term := range terms {
		s, ok := term.(string)
		if !ok || runeLen(s) <= 10 {
			continue
		}
		out = append(out, domain.ActionableItem{
			Description: "Understand contract term: " + clip(s, 50) + "...",
			Status:      domain.ActionPending,
			Priority:    domain.PriorityMedium,
			SourceField: "key_terms",
		})
	}
	return out
}

func generalActions(md domain.Metadata) []domain.ActionableItem {
	var out []domain.ActionableItem
	title, subject, author := md["document_title"], md["subject"], md["author"]

	if truthy(title) || truthy(subject) {
		name := valueText(subject)
		if truthy(title) {
			name = valueText(title)
		}
		out = append(out, domain.ActionableItem{
			Description: "Review and process document: " + name,
			Status:      domain.ActionPending,
			Priority:    domain.PriorityMedium,
			SourceField: "document_title, subject",
		})
	}

	if purpose := md["document_purpose"]; truthy(purpose) {
		out = append(out, domain.ActionableItem{
			Description: "Address document purpose: " + ellipsize(valueText(purpose), 100),
			Status:      domain.ActionPending,
			Priority:    domain.PriorityMedium,
			SourceField: "document_purpose",
		})
	}

	switch points := md["key_points"].(type) {
	case string:
		if points != "" {
			out = append(out, domain.ActionableItem{
				Description: "Review key points: " + ellipsize(points, 100),
				Status:      domain.ActionPending,
				Priority:    domain.PriorityMedium,
				SourceField: "key_points",
			})
		}
	case []any:
		for i, p := range points {
			if i >= 3 {
				break
			}
			s, ok := p.(string)
			if !ok || runeLen(strings.TrimSpace(s)) <= 5 {
				continue
			}
			out = append(out, domain.ActionableItem{
				Description: fmt.Sprintf("Consider key point %d: %s", i+1, ellipsize(s, 80)),
				Status:      domain.ActionPending,
				Priority:    domain.PriorityLow,
				SourceField: "key_points",
			})
		}
	}

	if truthy(author) {
		out = append(out, domain.ActionableItem{
			Description: "Follow up with document author: " + valueText(author),
			Status:      domain.ActionPending,
			Priority:    domain.PriorityLow,
			SourceField: "author",
		})
	}
	return out
}

// truthy reports whether v carries a usable value: nil, empty strings,
// zero numbers, false and empty collections do not.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

func valueText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsize(s string, n int) string {
	if runeLen(s) > n {
		return clip(s, n) + "..."
	}
	return s
}
