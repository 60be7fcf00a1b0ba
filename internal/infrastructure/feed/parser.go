package feed

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/orders/backend/internal/domain/catalog"
	"gopkg.in/yaml.v3"
)

type document struct {
	Shop       string         `yaml:"shop"`
	Categories []categoryNode `yaml:"categories"`
	Goods      []goodNode     `yaml:"goods"`
}

type categoryNode struct {
	ID   uint64 `yaml:"id"`
	Name string `yaml:"name"`
}

type goodNode struct {
	ID         uint64    `yaml:"id"`
	Category   uint64    `yaml:"category"`
	Name       string    `yaml:"name"`
	Model      string    `yaml:"model"`
	Price      int64     `yaml:"price"`
	PriceRRC   int64     `yaml:"price_rrc"`
	Quantity   int64     `yaml:"quantity"`
	Parameters yaml.Node `yaml:"parameters"`
}

// Parse decodes a YAML feed document, then normalizes and validates it.
// Any failure is a *catalog.MalformedFeedError.
func Parse(data []byte) (*catalog.Feed, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, catalog.NewMalformedFeedError(errors.New("document is empty"))
		}
		return nil, catalog.NewMalformedFeedError(err)
	}

	feed := &catalog.Feed{
		Shop:       doc.Shop,
		Categories: make([]catalog.FeedCategory, 0, len(doc.Categories)),
		Goods:      make([]catalog.FeedGood, 0, len(doc.Goods)),
	}
	for _, c := range doc.Categories {
		feed.Categories = append(feed.Categories, catalog.FeedCategory{ID: c.ID, Name: c.Name})
	}
	for i, g := range doc.Goods {
		params, err := parameters(&g.Parameters)
		if err != nil {
			return nil, catalog.NewMalformedFeedError(fmt.Errorf("goods[%d].parameters: %w", i, err))
		}
		feed.Goods = append(feed.Goods, catalog.FeedGood{
			ID:         g.ID,
			Category:   g.Category,
			Name:       g.Name,
			Model:      g.Model,
			Price:      g.Price,
			PriceRRC:   g.PriceRRC,
			Quantity:   g.Quantity,
			Parameters: params,
		})
	}

	feed.Normalize()
	if err := feed.Validate(); err != nil {
		return nil, err
	}
	return feed, nil
}

// parameters reads a name->value mapping in document order.
// Scalar values keep their literal text, so 6.2 stays "6.2".
func parameters(node *yaml.Node) ([]catalog.FeedParameter, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	out := make([]catalog.FeedParameter, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: parameter name must be a scalar", key.Line)
		}
		if value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: value of %q must be a scalar", value.Line, key.Value)
		}
		v := value.Value
		if value.Tag == "!!null" {
			v = ""
		}
		out = append(out, catalog.FeedParameter{Name: key.Value, Value: v})
	}
	return out, nil
}
