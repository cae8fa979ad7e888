package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/alexhholmes/structlayout/internal/diag"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		comment   string
		wantSize  int
		wantAlign int
		wantCheck string
		wantErr   bool
	}{
		// Valid annotations
		{"@layout size=16 align=4", 16, 4, "", false},
		{"@layout align=4 size=16", 16, 4, "", false}, // Order doesn't matter
		{"@layout size=64 align=8 check=Pod", 64, 8, "Pod", false},
		{"@layout", 0, 0, "", false},          // missing values are rejected later by the analyzer
		{"@layout size=0 align=3", 0, 3, "", false}, // range checks belong to the analyzer

		// Error cases
		{"", 0, 0, "", true},                            // no annotation
		{"size=4096", 0, 0, "", true},                   // missing @layout
		{"@layoutsize=16", 0, 0, "", true},              // not the @layout keyword
		{"@layout size=abc", 0, 0, "", true},            // non-numeric size
		{"@layout align=x", 0, 0, "", true},             // non-numeric align
		{"@layout size=16 endian=big", 0, 0, "", true},  // unknown param
		{"@layout size=16 size=32", 0, 0, "", true},     // duplicate param
		{"@layout size", 0, 0, "", true},                // not key=value
		{"@layout derive=copy,,clone", 0, 0, "", true},  // empty derive entry
	}

	for _, tt := range tests {
		t.Run(tt.comment, func(t *testing.T) {
			got, err := ParseAnnotation(tt.comment)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseAnnotation(%q) expected error, got nil", tt.comment)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseAnnotation(%q) unexpected error: %v", tt.comment, err)
			}

			if got.Size != tt.wantSize {
				t.Errorf("ParseAnnotation(%q).Size = %d, want %d", tt.comment, got.Size, tt.wantSize)
			}

			if got.Align != tt.wantAlign {
				t.Errorf("ParseAnnotation(%q).Align = %d, want %d", tt.comment, got.Align, tt.wantAlign)
			}

			if got.Check != tt.wantCheck {
				t.Errorf("ParseAnnotation(%q).Check = %q, want %q", tt.comment, got.Check, tt.wantCheck)
			}
		})
	}
}

func TestParseAnnotationDerive(t *testing.T) {
	got, err := ParseAnnotation("@layout size=16 align=4 derive=copy,clone,debug,default")
	if err != nil {
		t.Fatalf("ParseAnnotation() error: %v", err)
	}

	want := []string{"copy", "clone", "debug", "default"}
	if !reflect.DeepEqual(got.Derive, want) {
		t.Errorf("Derive = %v, want %v", got.Derive, want)
	}

	// Unknown derive names are kept; the whitelist is enforced by codegen.
	got, err = ParseAnnotation("@layout size=16 align=4 derive=hash")
	if err != nil {
		t.Fatalf("ParseAnnotation() error: %v", err)
	}
	if !reflect.DeepEqual(got.Derive, []string{"hash"}) {
		t.Errorf("Derive = %v, want [hash]", got.Derive)
	}
}

func TestParseAnnotationUnsupportedAttribute(t *testing.T) {
	_, err := ParseAnnotation("@layout size=16 align=4 repr=C")
	if !errors.Is(err, diag.ErrUnsupportedAttribute) {
		t.Errorf("expected UnsupportedAttributeError, got %v", err)
	}
}

func TestCleanComment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"// @layout size=4096", "@layout size=4096"},
		{"  //   @layout size=4096  ", "@layout size=4096"},
		{"/* @layout size=4096 */", "@layout size=4096"},
		{"  /*  @layout size=4096  */  ", "@layout size=4096"},
		{"@layout size=4096", "@layout size=4096"}, // no markers
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanComment(tt.input)
		if got != tt.want {
			t.Errorf("CleanComment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFindAnnotation(t *testing.T) {
	tests := []struct {
		name      string
		comments  []string
		wantSize  int
		wantAlign int
		wantFound bool
		wantErr   bool
	}{
		{
			name: "found in first line",
			comments: []string{
				"@layout size=4096 align=8",
				"other comment",
			},
			wantSize:  4096,
			wantAlign: 8,
			wantFound: true,
		},
		{
			name: "found in second line",
			comments: []string{
				"Header is the page header.",
				"@layout size=8192 align=4",
			},
			wantSize:  8192,
			wantAlign: 4,
			wantFound: true,
		},
		{
			name: "not found",
			comments: []string{
				"Just a comment",
				"Another comment",
			},
			wantFound: false,
		},
		{
			name: "malformed annotation is an error",
			comments: []string{
				"@layout size=16 bogus=1",
			},
			wantFound: true,
			wantErr:   true,
		},
		{
			name:      "empty comments",
			comments:  []string{},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := FindAnnotation(tt.comments)

			if found != tt.wantFound {
				t.Errorf("FindAnnotation() found = %v, want %v", found, tt.wantFound)
				return
			}

			if tt.wantErr {
				if err == nil {
					t.Error("FindAnnotation() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("FindAnnotation() unexpected error: %v", err)
			}

			if !tt.wantFound {
				return
			}

			if got.Size != tt.wantSize {
				t.Errorf("FindAnnotation().Size = %d, want %d", got.Size, tt.wantSize)
			}

			if got.Align != tt.wantAlign {
				t.Errorf("FindAnnotation().Align = %d, want %d", got.Align, tt.wantAlign)
			}
		})
	}
}
