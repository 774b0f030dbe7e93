// Package catalogfile loads card catalogs from YAML files and ships a
// built-in default catalog for running without any reference data.
package catalogfile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// DTO types mirror the YAML layout. They convert into catalog types
// through catalog.New, which owns all validation.

type catalogDTO struct {
	Version string    `koanf:"version"`
	Cards   []cardDTO `koanf:"cards"`
}

type cardDTO struct {
	ID         string         `koanf:"id"`
	Name       string         `koanf:"name"`
	Issuer     string         `koanf:"issuer"`
	Kind       string         `koanf:"kind"`
	Policy     string         `koanf:"policy"`
	Tiers      []tierDTO      `koanf:"tiers"`
	GroupBonus *groupBonusDTO `koanf:"group_bonus"`
	DualBucket *dualBucketDTO `koanf:"dual_bucket"`
	SharedCap  *sharedCapDTO  `koanf:"shared_cap"`
}

type tierDTO struct {
	Description string    `koanf:"description"`
	MinSpend    float64   `koanf:"min_spend"`
	Cap         float64   `koanf:"cap"`
	BaseRate    float64   `koanf:"base_rate"`
	Rates       []rateDTO `koanf:"rates"`
}

type rateDTO struct {
	Category  string  `koanf:"category"`
	Value     float64 `koanf:"value"`
	CapAmount float64 `koanf:"cap_amount"`
	CapType   string  `koanf:"cap_type"`
	CapGroup  string  `koanf:"cap_group"`
}

type groupBonusDTO struct {
	Groups    []groupDTO `koanf:"groups"`
	Pick      int        `koanf:"pick"`
	BonusRate float64    `koanf:"bonus_rate"`
	GroupCap  float64    `koanf:"group_cap"`
}

type groupDTO struct {
	Name    string   `koanf:"name"`
	Members []string `koanf:"members"`
}

type dualBucketDTO struct {
	Buckets []bucketDTO `koanf:"buckets"`
}

type bucketDTO struct {
	Members   []string `koanf:"members"`
	MinSpend  float64  `koanf:"min_spend"`
	Cap       float64  `koanf:"cap"`
	BonusRate float64  `koanf:"bonus_rate"`
}

type sharedCapDTO struct {
	Members   []string `koanf:"members"`
	SpendCap  float64  `koanf:"spend_cap"`
	MinSpend  float64  `koanf:"min_spend"`
	BonusRate float64  `koanf:"bonus_rate"`
}

// Load reads and validates a catalog from a YAML file. A file without
// a version gets a generated one, so every load is distinguishable to
// the result cache.
func Load(ctx context.Context, path string) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	var dto catalogDTO
	if err := k.UnmarshalWithConf("", &dto, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadCatalog, err)
	}
	return build(dto)
}

func build(dto catalogDTO) (*catalog.Catalog, error) {
	version := dto.Version
	if version == "" {
		version = uuid.NewString()
	}
	cards := make([]catalog.Card, 0, len(dto.Cards))
	for _, c := range dto.Cards {
		cards = append(cards, convertCard(c))
	}
	cat, err := catalog.New(version, cards)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	return &cat, nil
}

func convertCard(dto cardDTO) catalog.Card {
	card := catalog.Card{
		ID:     dto.ID,
		Name:   dto.Name,
		Issuer: dto.Issuer,
		Kind:   catalog.Kind(dto.Kind),
		Policy: catalog.Policy(dto.Policy),
	}
	if card.Policy == "" {
		card.Policy = catalog.PolicyDefault
	}
	for _, t := range dto.Tiers {
		tier := catalog.Tier{
			Description: t.Description,
			MinSpend:    t.MinSpend,
			Cap:         t.Cap,
			BaseRate:    t.BaseRate,
		}
		for _, r := range t.Rates {
			tier.Rates = append(tier.Rates, catalog.Rate{
				Category:  spend.Category(r.Category),
				Value:     r.Value,
				CapAmount: r.CapAmount,
				CapType:   catalog.CapType(r.CapType),
				CapGroup:  r.CapGroup,
			})
		}
		card.Tiers = append(card.Tiers, tier)
	}
	if dto.GroupBonus != nil {
		gb := &catalog.GroupBonus{
			Pick:      dto.GroupBonus.Pick,
			BonusRate: dto.GroupBonus.BonusRate,
			GroupCap:  dto.GroupBonus.GroupCap,
		}
		for _, g := range dto.GroupBonus.Groups {
			gb.Groups = append(gb.Groups, catalog.Group{
				Name:    g.Name,
				Members: categories(g.Members),
			})
		}
		card.GroupBonus = gb
	}
	if dto.DualBucket != nil && len(dto.DualBucket.Buckets) == 2 {
		db := &catalog.DualBucket{}
		for i, b := range dto.DualBucket.Buckets {
			db.Buckets[i] = catalog.Bucket{
				Members:   categories(b.Members),
				MinSpend:  b.MinSpend,
				Cap:       b.Cap,
				BonusRate: b.BonusRate,
			}
		}
		card.DualBucket = db
	}
	if dto.SharedCap != nil {
		card.SharedCap = &catalog.SharedCap{
			Members:   categories(dto.SharedCap.Members),
			SpendCap:  dto.SharedCap.SpendCap,
			MinSpend:  dto.SharedCap.MinSpend,
			BonusRate: dto.SharedCap.BonusRate,
		}
	}
	return card
}

func categories(names []string) []spend.Category {
	out := make([]spend.Category, len(names))
	for i, n := range names {
		out[i] = spend.Category(n)
	}
	return out
}
