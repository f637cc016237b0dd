package extract

import "testing"

func TestNormalizeParty(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"name with chip", "SMITH JOHN\nGRANTOR", "SMITH JOHN (GRANTOR)"},
		{"grantee chip", "DOE JANE\nGRANTEE", "DOE JANE (GRANTEE)"},
		{"chip with prefix", "DOE JANE\nRole: Grantee", "DOE JANE (GRANTEE)"},
		{"no chip", "ACME TITLE LLC", "ACME TITLE LLC"},
		{"empty", "", ""},
		{"chip only", "GRANTOR", ""},
		{"inline role", "SMITH JOHN GRANTOR", "SMITH JOHN (GRANTOR)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := NormalizeParty(c.in); got != c.want {
				t.Errorf("NormalizeParty(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
