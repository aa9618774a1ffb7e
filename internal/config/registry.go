package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/docmeta/internal/core/domain"
)

type registryFile struct {
	DocumentTypes []domain.DocumentType `yaml:"document_types" validate:"required,min=1,dive"`
}

// LoadRegistry returns the built-in registry when path is empty and the
// YAML-defined one otherwise.
func LoadRegistry(path string) (*domain.Registry, error) {
	if strings.TrimSpace(path) == "" {
		return domain.NewRegistry(domain.DefaultDocumentTypes())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document types: %w", err)
	}
	return ParseRegistry(raw)
}

func ParseRegistry(raw []byte) (*domain.Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse document types", err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "validate document types", err)
	}
	return domain.NewRegistry(file.DocumentTypes)
}
