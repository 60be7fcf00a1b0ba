package main

import (
	"github.com/brianvoe/gofakeit/v7"
	"gopkg.in/yaml.v3"
)

type seedFeedDoc struct {
	Shop       string         `yaml:"shop"`
	Categories []seedCategory `yaml:"categories"`
	Goods      []seedGood     `yaml:"goods"`
}

type seedCategory struct {
	ID   uint64 `yaml:"id"`
	Name string `yaml:"name"`
}

type seedGood struct {
	ID         uint64            `yaml:"id"`
	Category   uint64            `yaml:"category"`
	Model      string            `yaml:"model"`
	Name       string            `yaml:"name"`
	Price      int64             `yaml:"price"`
	PriceRRC   int64             `yaml:"price_rrc"`
	Quantity   int64             `yaml:"quantity"`
	Parameters map[string]string `yaml:"parameters"`
}

// SeedOptions shapes a generated feed
type SeedOptions struct {
	Shop       string
	Categories int
	Goods      int
	Seed       uint64
}

// GenerateFeed builds a random but valid partner feed document.
// The same non-zero Seed always yields the same document.
func GenerateFeed(opts SeedOptions) ([]byte, error) {
	if opts.Categories <= 0 {
		opts.Categories = 3
	}
	if opts.Goods < 0 {
		opts.Goods = 0
	}

	f := gofakeit.New(opts.Seed)
	doc := seedFeedDoc{
		Shop:       opts.Shop,
		Categories: make([]seedCategory, 0, opts.Categories),
		Goods:      make([]seedGood, 0, opts.Goods),
	}
	if doc.Shop == "" {
		doc.Shop = f.Company()
	}

	used := make(map[string]struct{}, opts.Categories)
	for len(doc.Categories) < opts.Categories {
		name := f.ProductCategory()
		if _, dup := used[name]; dup {
			name = name + " " + f.Word()
			if _, dup := used[name]; dup {
				continue
			}
		}
		used[name] = struct{}{}
		doc.Categories = append(doc.Categories, seedCategory{
			ID:   uint64(100 + len(doc.Categories)),
			Name: name,
		})
	}

	for i := 0; i < opts.Goods; i++ {
		price := int64(f.Number(100, 200000))
		doc.Goods = append(doc.Goods, seedGood{
			ID:       uint64(1000 + i),
			Category: doc.Categories[f.Number(0, len(doc.Categories)-1)].ID,
			Model:    f.Word() + "/" + f.Word() + "/" + f.LetterN(3),
			Name:     f.ProductName(),
			Price:    price,
			PriceRRC: price + int64(f.Number(0, 5000)),
			Quantity: int64(f.Number(0, 50)),
			Parameters: map[string]string{
				"Color":  f.Color(),
				"Weight": f.DigitN(3),
			},
		})
	}

	return yaml.Marshal(&doc)
}
