package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"trading_edu_backend/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var bundledDocument []byte

type document struct {
	Modules []model.LearningModule  `yaml:"modules"`
	Badges  []model.BadgeDefinition `yaml:"badges"`
}

// Bundled 返回编译进二进制的课程目录
func Bundled() (*Catalog, error) {
	return Parse(bundledDocument)
}

// LoadFile reads and validates a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 按 schema 校验 YAML 课程文档并建立索引
func Parse(data []byte) (*Catalog, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return New(doc.Modules, doc.Badges)
}
