package token

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Process Data", "process_data"},
		{"process   data", "process_data"},
		{"Fetch, Remote. Data!", "fetch_remote_data"},
		{"already_normal", "already_normal"},
		{"Tabs\tand\nnewlines", "tabs_and_newlines"},
		{"", ""},
		{"UPPER", "upper"},
		{"semi;colon:mix 2", "semicolonmix_2"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
