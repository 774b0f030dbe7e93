package catalogfile

import (
	"github.com/google/uuid"

	"github.com/jwpang/cardwise/internal/domain/catalog"
	"github.com/jwpang/cardwise/internal/domain/spend"
)

// Default returns the built-in card catalog. Every call stamps a fresh
// version so a reload to the default is still a distinct catalog to
// the result cache.
func Default() *catalog.Catalog {
	cards := []catalog.Card{
		{
			ID:     "everyday-cashback",
			Name:   "Everyday Cashback",
			Issuer: "Meridian Bank",
			Kind:   catalog.KindCashback,
			Policy: catalog.PolicyDefault,
			Tiers: []catalog.Tier{
				{
					Description: "Below minimum spend",
					MinSpend:    0,
					BaseRate:    0.25,
				},
				{
					Description: "Min spend $800",
					MinSpend:    800,
					Cap:         80,
					BaseRate:    0.25,
					Rates: []catalog.Rate{
						{Category: spend.Dining, Value: 6, CapAmount: 30, CapType: catalog.CapEarned, CapGroup: "bonus"},
						{Category: spend.Groceries, Value: 8, CapGroup: "bonus"},
						{Category: spend.Petrol, Value: 8, CapGroup: "bonus"},
					},
				},
			},
		},
		{
			ID:     "one-rebate",
			Name:   "One Rebate",
			Issuer: "Meridian Bank",
			Kind:   catalog.KindCashback,
			Policy: catalog.PolicyDefault,
			Tiers: []catalog.Tier{
				{Description: "Below minimum spend", MinSpend: 0, BaseRate: 0.3},
				{Description: "Min spend $500", MinSpend: 500, Cap: 50, BaseRate: 3.33},
				{Description: "Min spend $1000", MinSpend: 1000, Cap: 100, BaseRate: 3.33},
				{Description: "Min spend $2000", MinSpend: 2000, Cap: 200, BaseRate: 3.33},
			},
		},
		{
			ID:     "preferred-choice",
			Name:   "Preferred Choice Miles",
			Issuer: "Harborview Bank",
			Kind:   catalog.KindMiles,
			Policy: catalog.PolicyTopGroups,
			Tiers: []catalog.Tier{
				{Description: "Standard", BaseRate: 0.4},
			},
			GroupBonus: &catalog.GroupBonus{
				Groups: []catalog.Group{
					{Name: "dining", Members: []spend.Category{spend.Dining}},
					{Name: "entertainment", Members: []spend.Category{spend.Entertainment}},
					{Name: "retail", Members: []spend.Category{spend.Retail, spend.Departmental}},
					{Name: "transport", Members: []spend.Category{spend.Transport, spend.CommuterPass, spend.Petrol}},
					{Name: "travel", Members: []spend.Category{spend.Travel}},
				},
				Pick:      1,
				BonusRate: 4,
				GroupCap:  1000,
			},
		},
		{
			ID:     "preferred-choice-duo",
			Name:   "Preferred Choice Duo",
			Issuer: "Harborview Bank",
			Kind:   catalog.KindMiles,
			Policy: catalog.PolicyTopGroups,
			Tiers: []catalog.Tier{
				{Description: "Standard", BaseRate: 0.4},
			},
			GroupBonus: &catalog.GroupBonus{
				Groups: []catalog.Group{
					{Name: "dining", Members: []spend.Category{spend.Dining}},
					{Name: "entertainment", Members: []spend.Category{spend.Entertainment}},
					{Name: "retail", Members: []spend.Category{spend.Retail, spend.Departmental}},
					{Name: "transport", Members: []spend.Category{spend.Transport, spend.CommuterPass, spend.Petrol}},
					{Name: "travel", Members: []spend.Category{spend.Travel}},
				},
				Pick:      2,
				BonusRate: 4,
				GroupCap:  1000,
			},
		},
		{
			ID:     "select-cashback",
			Name:   "Select Cashback",
			Issuer: "Concord Trust",
			Kind:   catalog.KindCashback,
			Policy: catalog.PolicySingleTop,
			Tiers: []catalog.Tier{
				{
					Description: "Min spend $350",
					MinSpend:    350,
					Cap:         80,
					BaseRate:    0.5,
					Rates: []catalog.Rate{
						{Category: spend.Dining, Value: 8},
						{Category: spend.Groceries, Value: 8},
						{Category: spend.Transport, Value: 8},
						{Category: spend.Retail, Value: 8},
					},
				},
			},
		},
		{
			ID:     "signature-miles",
			Name:   "Signature Miles",
			Issuer: "Harborview Bank",
			Kind:   catalog.KindMiles,
			Policy: catalog.PolicyDualBucket,
			Tiers: []catalog.Tier{
				{Description: "Standard", BaseRate: 0.4},
			},
			DualBucket: &catalog.DualBucket{
				Buckets: [2]catalog.Bucket{
					{
						Members:   []spend.Category{spend.ForeignCurrency, spend.Overseas},
						MinSpend:  1000,
						Cap:       1200,
						BonusRate: 4,
					},
					{
						Members: []spend.Category{
							spend.Dining, spend.Groceries, spend.Petrol,
							spend.Transport, spend.Retail, spend.Online,
						},
						MinSpend:  1000,
						Cap:       1200,
						BonusRate: 4,
					},
				},
			},
		},
		{
			ID:     "points-plus",
			Name:   "Points Plus",
			Issuer: "Union Pacific Bank",
			Kind:   catalog.KindMiles,
			Policy: catalog.PolicySharedCapTopUp,
			Tiers: []catalog.Tier{
				{Description: "Standard", BaseRate: 0.4},
			},
			SharedCap: &catalog.SharedCap{
				Members:   []spend.Category{spend.Dining, spend.Groceries, spend.Online},
				SpendCap:  600,
				MinSpend:  800,
				BonusRate: 10,
			},
		},
		{
			ID:     "revolve-miles",
			Name:   "Revolve Miles",
			Issuer: "Concord Trust",
			Kind:   catalog.KindMiles,
			Policy: catalog.PolicyDefault,
			Tiers: []catalog.Tier{
				{
					Description: "Standard",
					BaseRate:    0.4,
					Rates: []catalog.Rate{
						{Category: spend.Online, Value: 4, CapAmount: 1000, CapType: catalog.CapSpent},
						{Category: spend.Dining, Value: 4, CapAmount: 1000, CapType: catalog.CapSpent},
						{Category: spend.Entertainment, Value: 4, CapAmount: 1000, CapType: catalog.CapSpent},
					},
				},
			},
		},
	}

	cat, err := catalog.New(uuid.NewString(), cards)
	if err != nil {
		// The built-in catalog is covered by tests; failing here means
		// a broken build, not bad user input.
		panic(err)
	}
	return &cat
}
