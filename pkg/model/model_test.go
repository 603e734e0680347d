package model

import "testing"

func validBase() ClassBase {
	return ClassBase{
		ID:       "cat-1",
		Code:     "BEV",
		Name:     "Beverages",
		IsActive: true,
	}
}

func TestValidateAcceptsMinimalEntity(t *testing.T) {
	if problems := validBase().Validate(); len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	b := validBase()
	b.Code = "   "
	b.Name = ""

	problems := b.Validate()
	if _, ok := problems["code"]; !ok {
		t.Error("expected code to be flagged")
	}
	if _, ok := problems["name"]; !ok {
		t.Error("expected name to be flagged")
	}
}

func TestValidateDeviationLimits(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		qty   float64
		bad   []string
	}{
		{"both in range", 0, 100, nil},
		{"price negative", -1, 10, []string{"price_deviation_limit"}},
		{"price over 100", 100.5, 10, []string{"price_deviation_limit"}},
		{"qty negative", 10, -0.1, []string{"qty_deviation_limit"}},
		{"both out", 101, 101, []string{"price_deviation_limit", "qty_deviation_limit"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBase()
			b.PriceDeviationLimit = tc.price
			b.QtyDeviationLimit = tc.qty
			problems := b.Validate()
			if len(problems) != len(tc.bad) {
				t.Fatalf("expected %d problems, got %v", len(tc.bad), problems)
			}
			for _, key := range tc.bad {
				if _, ok := problems[key]; !ok {
					t.Errorf("expected %s to be flagged, got %v", key, problems)
				}
			}
		})
	}
}

func TestValidateTaxRateNeedsProfile(t *testing.T) {
	b := validBase()
	b.TaxRate = 7.5

	if _, ok := b.Validate()["tax_profile_id"]; !ok {
		t.Error("expected tax_profile_id to be flagged when rate set without profile")
	}

	b.TaxProfileID = "vat-std"
	if problems := b.Validate(); len(problems) != 0 {
		t.Errorf("expected no problems with profile set, got %v", problems)
	}

	// Zero rate needs no profile.
	b = validBase()
	if problems := b.Validate(); len(problems) != 0 {
		t.Errorf("expected no problems with zero rate, got %v", problems)
	}
}

func TestDisplayLabel(t *testing.T) {
	b := validBase()
	if got := b.DisplayLabel(); got != "BEV · Beverages" {
		t.Errorf("DisplayLabel = %q", got)
	}

	b.Code = ""
	if got := b.DisplayLabel(); got != "Beverages" {
		t.Errorf("DisplayLabel without code = %q", got)
	}
}
