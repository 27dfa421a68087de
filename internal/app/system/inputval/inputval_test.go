package inputval

import (
	"strings"
	"testing"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"user123@example.co.uk", true},

		// Invalid emails
		{"", false},
		{"   ", false},
		{"notanemail", false},
		{"@example.com", false},
		{"user@", false},
		{"user@.com", false},
		{"user example.com", false},
		{"user@@example.com", false},
		{"Name <user@example.com>", false}, // ParseAddress accepts this but we want bare email
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		// Valid URLs
		{"http://example.com", true},
		{"https://example.com", true},
		{"https://example.com/path", true},
		{"https://example.com/path?query=value", true},
		{"https://e-waste-cl3k.onrender.com", true},
		{"http://localhost:8080", true},
		{"https://", false}, // No host

		// Invalid URLs
		{"", false},
		{"   ", false},
		{"example.com", false},          // No scheme
		{"ftp://example.com", false},    // Wrong scheme
		{"file:///path/to/file", false}, // Wrong scheme
		{"javascript:alert(1)", false},  // Wrong scheme
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got := IsValidHTTPURL(tt.url)
			if got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	type signupInput struct {
		FirstName  string `json:"first_name" validate:"required,max=5" label:"First Name"`
		Email      string `json:"email" validate:"required,email" label:"Email"`
		PickupType string `json:"pickup_type" validate:"oneof=residential business"`
	}
	valid := signupInput{FirstName: "Asha", Email: "asha@example.com", PickupType: "business"}

	tests := []struct {
		name   string
		mutate func(*signupInput)
		field  string
		want   string
	}{
		{"valid", func(*signupInput) {}, "", ""},
		{"missing name uses label", func(in *signupInput) { in.FirstName = "" }, "first_name", "First Name is required."},
		{"too long", func(in *signupInput) { in.FirstName = "Ashwini" }, "first_name", "First Name must be at most 5 characters."},
		{"bad email", func(in *signupInput) { in.Email = "asha@" }, "email", "A valid email address is required."},
		{"enum without label uses field name", func(in *signupInput) { in.PickupType = "industrial" }, "pickup_type", "pickup_type must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			res := Validate(&in)
			if tt.want == "" {
				if res.HasErrors() {
					t.Fatalf("Validate() = %q, want no errors", res.First())
				}
				return
			}
			if len(res.Errors) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %+v", len(res.Errors), res.Errors)
			}
			if res.Errors[0].Field != tt.field || !strings.HasPrefix(res.First(), tt.want) {
				t.Errorf("Validate() = %s: %q, want %s: %q", res.Errors[0].Field, res.First(), tt.field, tt.want)
			}
		})
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if res := Validate("not a struct"); res == nil {
		t.Error("Validate() returned nil for a non-struct")
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"555-0100", true},
		{"+91 98765 43210", true},
		{"(217) 555-0100", true},
		{"217.555.0100", true},
		{"12345", false},            // too few digits
		{"1234567890123456", false}, // too many digits
		{"555-CALL-NOW", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := IsValidPhone(tt.phone); got != tt.want {
				t.Errorf("IsValidPhone(%q) = %v, want %v", tt.phone, got, tt.want)
			}
		})
	}
}

func TestIsValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"500", true},
		{"99.5", true},
		{"1000.00", true},
		{" 250 ", true},
		{"0", false},
		{"0.00", false},
		{"-10", false},
		{"10.555", false},
		{"1e3", false},
		{"abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			if got := IsValidAmount(tt.amount); got != tt.want {
				t.Errorf("IsValidAmount(%q) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type ContactInput struct {
		Phone   string `json:"phone" validate:"phone" label:"Phone"`
		Subject string `json:"subject" validate:"required,subject" label:"Subject"`
	}

	result := Validate(ContactInput{Phone: "555-0100", Subject: "feedback"})
	if result.HasErrors() {
		t.Errorf("Validate() valid contact input failed: %s", result.First())
	}

	// Phone is optional; an empty value passes the phone rule.
	result = Validate(ContactInput{Subject: "other"})
	if result.HasErrors() {
		t.Errorf("Validate() empty phone should pass, got: %s", result.First())
	}

	result = Validate(ContactInput{Phone: "12", Subject: "feedback"})
	if result.First() != "Please enter a valid phone number." {
		t.Errorf("Validate() bad phone message = %q", result.First())
	}

	result = Validate(ContactInput{Subject: "spam"})
	if result.First() != "Please choose a subject." {
		t.Errorf("Validate() bad subject message = %q", result.First())
	}

	type DonationInput struct {
		Amount string `json:"amount" validate:"required,amount" label:"Amount"`
	}
	if res := Validate(DonationInput{Amount: "250"}); res.HasErrors() {
		t.Errorf("Validate() amount=250 failed: %s", res.First())
	}
	if res := Validate(DonationInput{Amount: "-5"}); !res.HasErrors() {
		t.Error("Validate() amount=-5 should fail")
	}

	type URLInput struct {
		URL string `validate:"required,httpurl" label:"URL"`
	}
	if res := Validate(URLInput{URL: "ftp://example.com"}); !res.HasErrors() {
		t.Error("Validate() httpurl=ftp should fail")
	}
}
