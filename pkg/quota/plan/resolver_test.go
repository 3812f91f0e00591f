package plan

import (
	"testing"
)

func TestResolver_KnownTiers(t *testing.T) {
	r := NewResolver(Defaults())

	tests := []struct {
		tier         Tier
		dailyMinutes float64
		maxSeconds   float64
		perHour      int64
	}{
		{TierPlus, 10, 60, 20},
		{TierPro, 15, 120, 30},
		{TierApex, 30, 180, 40},
	}

	for _, tt := range tests {
		p := r.Resolve(tt.tier)
		if p.DailyMinutes != tt.dailyMinutes {
			t.Errorf("%s: expected %v daily minutes, got %v", tt.tier, tt.dailyMinutes, p.DailyMinutes)
		}
		if p.MaxRequestSeconds != tt.maxSeconds {
			t.Errorf("%s: expected %v max request seconds, got %v", tt.tier, tt.maxSeconds, p.MaxRequestSeconds)
		}
		if p.RequestsPerHour != tt.perHour {
			t.Errorf("%s: expected %d requests/hour, got %d", tt.tier, tt.perHour, p.RequestsPerHour)
		}
		if !p.Allowed() {
			t.Errorf("%s: expected voice enabled", tt.tier)
		}
	}
}

func TestResolver_FreeTierDisabled(t *testing.T) {
	r := NewResolver(Defaults())

	if r.Resolve(TierFree).Allowed() {
		t.Error("Expected free tier to have no voice access")
	}
}

func TestResolver_UnknownTierFailsClosed(t *testing.T) {
	r := NewResolver(Defaults())

	p := r.Resolve(Tier("ENTERPRISE"))
	if p.Allowed() {
		t.Error("Expected unknown tier to resolve to no voice access")
	}
	if p.Tier != Tier("ENTERPRISE") {
		t.Errorf("Expected policy stamped with requested tier, got %s", p.Tier)
	}
}

func TestResolver_DefaultShares(t *testing.T) {
	r := NewResolver(Defaults())
	p := r.Resolve(TierPro)

	if p.InputShare != DefaultInputShare || p.OutputShare != DefaultOutputShare {
		t.Errorf("Expected default shares 0.20/0.80, got %v/%v", p.InputShare, p.OutputShare)
	}
	if p.InputBudgetMinutes() != 3 {
		t.Errorf("Expected 3 input budget minutes for PRO, got %v", p.InputBudgetMinutes())
	}
	if p.OutputBudgetMinutes() != 12 {
		t.Errorf("Expected 12 output budget minutes for PRO, got %v", p.OutputBudgetMinutes())
	}
}

func TestResolver_ExplicitSharesKept(t *testing.T) {
	r := NewResolver(map[Tier]Policy{
		TierPro: {DailyMinutes: 20, MaxRequestSeconds: 60, RequestsPerHour: 10, InputShare: 0.5, OutputShare: 0.5},
	})

	p := r.Resolve(TierPro)
	if p.InputShare != 0.5 || p.OutputShare != 0.5 {
		t.Errorf("Expected explicit shares preserved, got %v/%v", p.InputShare, p.OutputShare)
	}
}

func TestResolver_Update(t *testing.T) {
	r := NewResolver(Defaults())

	r.Update(map[Tier]Policy{
		TierPlus: {DailyMinutes: 25, MaxRequestSeconds: 90, RequestsPerHour: 50},
	})

	if got := r.Resolve(TierPlus).DailyMinutes; got != 25 {
		t.Errorf("Expected updated allowance 25, got %v", got)
	}
	// Tiers absent from the new table fall back to no access.
	if r.Resolve(TierApex).Allowed() {
		t.Error("Expected APEX dropped by update to fail closed")
	}
}

func TestResolver_Tiers(t *testing.T) {
	r := NewResolver(Defaults())

	tiers := r.Tiers()
	if len(tiers) != 4 {
		t.Fatalf("Expected 4 tiers, got %d", len(tiers))
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i-1] >= tiers[i] {
			t.Errorf("Expected sorted tiers, got %v", tiers)
		}
	}
}

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name    string
		table   map[Tier]Policy
		wantErr bool
	}{
		{
			name:    "valid defaults",
			table:   Defaults(),
			wantErr: false,
		},
		{
			name:    "negative daily minutes",
			table:   map[Tier]Policy{TierPlus: {DailyMinutes: -1, MaxRequestSeconds: 60, RequestsPerHour: 10}},
			wantErr: true,
		},
		{
			name:    "shares exceed one",
			table:   map[Tier]Policy{TierPlus: {DailyMinutes: 10, MaxRequestSeconds: 60, RequestsPerHour: 10, InputShare: 0.6, OutputShare: 0.6}},
			wantErr: true,
		},
		{
			name:    "single share pushes defaulted pair over one",
			table:   map[Tier]Policy{TierPlus: {DailyMinutes: 10, MaxRequestSeconds: 60, RequestsPerHour: 10, InputShare: 0.5}},
			wantErr: true,
		},
		{
			name:    "share out of range",
			table:   map[Tier]Policy{TierPlus: {DailyMinutes: 10, MaxRequestSeconds: 60, RequestsPerHour: 10, InputShare: 1.5}},
			wantErr: true,
		},
		{
			name:    "voice enabled without request cap",
			table:   map[Tier]Policy{TierPlus: {DailyMinutes: 10, RequestsPerHour: 10}},
			wantErr: true,
		},
		{
			name:    "voice enabled without hourly limit",
			table:   map[Tier]Policy{TierPlus: {DailyMinutes: 10, MaxRequestSeconds: 60}},
			wantErr: true,
		},
		{
			name:    "voiceless tier needs nothing else",
			table:   map[Tier]Policy{TierFree: {}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTable(tt.table)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
