package contact

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		// 10-значный североамериканский номер без "+"
		{input: "3365551212", want: "+13365551212"},
		{input: "(336) 555-1212", want: "+13365551212"},
		// 11 цифр с ведущей единицей
		{input: "13365551212", want: "+13365551212"},
		// E.164 принимается как есть
		{input: "+13365551212", want: "+13365551212"},
		{input: "+44 20 7946 0958", want: "+442079460958"},
		// Слишком короткий местный номер
		{input: "555-1212", wantErr: true},
		{input: "+0123456789", wantErr: true},
		{input: "", wantErr: true},
		{input: "call me", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizePhone(%q) = %q, expected error", tt.input, got)
				}
				var invalid *InvalidContactError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected *InvalidContactError, got %T", err)
				}
				if invalid.Field != "phone" {
					t.Fatalf("error field = %q, want phone", invalid.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePhone(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "Client@Example.COM", want: "client@example.com"},
		{input: "  a.b+tag@mail.example.org ", want: "a.b+tag@mail.example.org"},
		{input: "no-at-sign", wantErr: true},
		{input: "@example.com", wantErr: true},
		{input: ".dot@example.com", wantErr: true},
		{input: "dot.@example.com", wantErr: true},
		{input: "user@example.c", wantErr: true},
		{input: "user@example", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeEmail(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeEmail(%q) = %q, expected error", tt.input, got)
				}
				var invalid *InvalidContactError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected *InvalidContactError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeEmail(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
