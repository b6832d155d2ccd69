package workflow

import (
	"strings"
	"testing"

	"github.com/m3rciful/applybot/internal/store"
)

func TestServicesKeyboardLayout(t *testing.T) {
	kb := servicesKeyboard()
	widths := make([]int, len(kb))
	for i, row := range kb {
		widths[i] = len(row)
	}
	want := []int{2, 2, 1, 1}
	if len(widths) != len(want) {
		t.Fatalf("rows = %v, want %v", widths, want)
	}
	for i := range want {
		if widths[i] != want[i] {
			t.Fatalf("rows = %v, want %v", widths, want)
		}
	}
	if got := kb[0][0].Data; got != "srv:VIBER" {
		t.Fatalf("first service = %q", got)
	}
	if got := kb[len(kb)-1][0].Data; got != string(ActionBackToMenu) {
		t.Fatalf("last row = %q", got)
	}
}

func TestApplicationCardEscapes(t *testing.T) {
	card := applicationCard(store.Application{
		UserID:        5,
		FirstName:     "<Eve>",
		Source:        "a & b",
		Experience:    "<script>",
		AvailableTime: "any",
	})
	if strings.Contains(card, "<script>") || strings.Contains(card, "<Eve>") {
		t.Fatalf("unescaped input in %q", card)
	}
	if !strings.Contains(card, "a &amp; b") {
		t.Fatalf("card = %q", card)
	}
}

func TestGreetingFallsBackWithoutName(t *testing.T) {
	got := greeting(User{ID: 1}, roleWorker)
	if !strings.Contains(got, "Пользователь") || strings.Contains(got, "@") {
		t.Fatalf("greeting = %q", got)
	}
	got = greeting(User{ID: 1, FirstName: "Ann", Username: "ann"}, roleAdmin)
	if !strings.Contains(got, "Ann @ann") || !strings.Contains(got, roleAdmin) {
		t.Fatalf("greeting = %q", got)
	}
}
