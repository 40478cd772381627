package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Rei  ", "Rei"},
		{"Rei\t\tAyanami", "Rei Ayanami"},
		{"a   b \n c", "a b c"},
		{"", ""},
		{"   ", ""},
		{"already clean", "already clean"},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.input); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeDisplayName_PreservesCasing(t *testing.T) {
	if got := NormalizeDisplayName("  ReiAYANAMI  "); got != "ReiAYANAMI" {
		t.Errorf("expected casing preserved, got %q", got)
	}
}

func TestSlugifyIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Team Alpha", "team_alpha"},
		{"  Wyvern (EX)  ", "wyvern_ex"},
		{"a--b__c", "a_b_c"},
		{"___", ""},
		{"Ångström", "ångström"},
	}

	for _, tt := range tests {
		if got := SlugifyIdentifier(tt.input); got != tt.want {
			t.Errorf("SlugifyIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeSlice_DropsEmptiesAndDuplicates(t *testing.T) {
	input := []string{" Team A ", "team a", "", "Team B", "   "}
	got := SanitizeSlice(input, SlugifyIdentifier)
	want := []string{"team_a", "team_b"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeSlice = %v, want %v", got, want)
	}
}

func TestPipeline_AppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "b" },
		func(s string) string { return s + "c" },
	}
	if got := p.Apply("a"); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
