package usage

import "testing"

func TestScope(t *testing.T) {
	if got := Scope("0000-1111"); got != "/subscriptions/0000-1111" {
		t.Errorf("Scope() = %q, want /subscriptions/0000-1111", got)
	}
}
