package taxonomy

import "testing"

func TestCanonical(t *testing.T) {
	n := NewStandardNormalizer()
	tests := []struct {
		in   string
		want string
	}{
		{"Abra alba", "Abra alba"},
		{"abra alba", "Abra alba"},
		{"  abra   alba  ", "Abra alba"},
		{"ABRA alba", "ABRA alba"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := n.Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	n := NewStandardNormalizer()
	tests := []struct {
		name     string
		in       string
		kind     AnnotationKind
		stripped string
		openNom  bool
	}{
		{"clean binomial", "Abra alba", AnnotationNone, "Abra alba", false},
		{"empty", "", AnnotationPlaceholder, "", false},
		{"na", "NA", AnnotationPlaceholder, "", false},
		{"unknown", "unknown", AnnotationPlaceholder, "", false},
		{"sp dot", "sp.", AnnotationPlaceholder, "", false},
		{"non-current over open nomenclature", "**non-current code** Antennarius sp.", AnnotationNonCurrent, "Antennarius", true},
		{"non-current over binomial", "**non-current code** Abra alba", AnnotationNonCurrent, "Abra alba", false},
		{"bracketed metadata", "unknown fish [, 1998]", AnnotationBracketed, "unknown fish", false},
		{"authorship", "Hyalinia crystallina Muller, 1774", AnnotationAuthorship, "Hyalinia crystallina", false},
		{"parenthesized authorship", "Abra alba (Wood, 1802)", AnnotationAuthorship, "Abra alba", false},
		{"open nomenclature sp", "Antennarius sp.", AnnotationOpenNomenclature, "Antennarius", true},
		{"open nomenclature cf", "Abra cf. alba", AnnotationOpenNomenclature, "Abra", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Classify(tt.in)
			if got.Kind != tt.kind {
				t.Fatalf("Classify(%q).Kind = %d, want %d", tt.in, got.Kind, tt.kind)
			}
			if got.Stripped != tt.stripped {
				t.Fatalf("Classify(%q).Stripped = %q, want %q", tt.in, got.Stripped, tt.stripped)
			}
			if got.OpenNomenclature != tt.openNom {
				t.Fatalf("Classify(%q).OpenNomenclature = %v, want %v", tt.in, got.OpenNomenclature, tt.openNom)
			}
		})
	}
}
