package trigger

import (
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		emoji string
		want  []Trigger
	}{
		{name: "delete glyph", emoji: "🗑️", want: []Trigger{Delete}},
		{name: "download glyph", emoji: "⬇️", want: []Trigger{Download}},
		{name: "invert custom emoji", emoji: "invert_image:123456", want: []Trigger{Invert}},
		{name: "caption custom emoji", emoji: "image_desc:654321", want: []Trigger{Caption}},
		{name: "token inside longer name", emoji: "my_invert_image_v2:99", want: []Trigger{Invert}},
		{name: "both tokens in one name", emoji: "invert_image_desc:42", want: []Trigger{Invert, Caption}},
		{name: "unrelated glyph", emoji: "👍", want: nil},
		{name: "unrelated custom emoji", emoji: "party_parrot:1", want: nil},
		{name: "empty", emoji: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(tt.emoji)
			if len(got) != len(tt.want) {
				t.Fatalf("Classify(%q) = %v, want %v", tt.emoji, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Classify(%q) = %v, want %v", tt.emoji, got, tt.want)
				}
			}
		})
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	triggers := []Trigger{Invert, Caption}
	if !Has(triggers, Invert) || !Has(triggers, Caption) {
		t.Fatal("expected both image triggers present")
	}
	if Has(triggers, Delete) || Has(nil, Download) {
		t.Fatal("unexpected trigger match")
	}
}
