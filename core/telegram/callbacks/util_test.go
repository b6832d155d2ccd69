package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		in, key, payload string
	}{
		{"approve:42", "approve", "42"},
		{"\fapprove|42", "approve", "42"},
		{"my_links", "my_links", ""},
		{"srv:VIBER", "srv", "VIBER"},
		{"", "", ""},
	}
	for _, tc := range cases {
		key, payload := Split(tc.in)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("Split(%q) = %q, %q; want %q, %q", tc.in, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParseCallbackDataPrefersUnique(t *testing.T) {
	key, payload := ParseCallbackData(&tele.Callback{Unique: "del", Data: "3"})
	if key != "del" || payload != "3" {
		t.Fatalf("got %q, %q", key, payload)
	}
	if key, _ := ParseCallbackData(nil); key != "" {
		t.Fatalf("nil callback key = %q", key)
	}
}
