package keyboard

import "testing"

func TestInlineButtonsRowsRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "A", Data: "approve:1"}, {Text: "B", Data: "reject:1"}},
		nil,
		[]InlineBtn{{Text: "C", Unique: "del", Data: "2"}},
	)
	if m == nil || len(m.InlineKeyboard) != 2 {
		t.Fatalf("markup = %+v", m)
	}
	if got := m.InlineKeyboard[0][1].Data; got != "reject:1" {
		t.Fatalf("raw data = %q", got)
	}
	if b := m.InlineKeyboard[1][0]; b.Unique != "del" || b.Data != "2" {
		t.Fatalf("unique button = %+v", b)
	}
}

func TestInlineButtonsRowsEmpty(t *testing.T) {
	if m := InlineButtonsRows(); m != nil {
		t.Fatalf("markup = %+v, want nil", m)
	}
}
