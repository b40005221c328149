package cli

import (
	"fmt"
	"os"
	"text/template"

	"github.com/iudanet/marketsync/internal/models"
)

// parseKind разбирает аргумент команды в тип сущности
func parseKind(arg string) (models.EntityKind, error) {
	switch arg {
	case "product", "products":
		return models.KindProduct, nil
	case "category", "categories":
		return models.KindCategory, nil
	default:
		return "", fmt.Errorf("unknown entity kind: %s. Use: product or category", arg)
	}
}

// renderTemplate выводит данные через text/template в stdout
func renderTemplate(name, text string, data any) error {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := tmpl.Execute(os.Stdout, data); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return nil
}

// detailTemplate возвращает шаблон деталей для типа сущности
func detailTemplate(kind models.EntityKind) string {
	if kind == models.KindCategory {
		return categoryTemplate
	}
	return productTemplate
}
