package workflow

import (
	"errors"
	"testing"

	"github.com/m3rciful/applybot/internal/store"
)

func TestParsePayload(t *testing.T) {
	cases := []struct {
		raw  string
		want Payload
		err  error
	}{
		{raw: "approve:42", want: Payload{Action: ActionApprove, ID: 42}},
		{raw: "\freject|42", want: Payload{Action: ActionReject, ID: 42}},
		{raw: "del:0", want: Payload{Action: ActionDelete, ID: 0}},
		{raw: "srv:OSHAD", want: Payload{Action: ActionService, Service: store.ServiceOshad}},
		{raw: "my_links", want: Payload{Action: ActionShowLinks}},
		{raw: "noop:", want: Payload{Action: ActionNoop}},
		{raw: "approve", err: ErrMalformedPayload},
		{raw: "approve:0", err: ErrMalformedPayload},
		{raw: "approve:1e3", err: ErrMalformedPayload},
		{raw: "del:-2", err: ErrMalformedPayload},
		{raw: "srv:viber", err: ErrMalformedPayload},
		{raw: "back_menu:1", err: ErrMalformedPayload},
		{raw: "", err: ErrUnknownAction},
		{raw: "Approve:1", err: ErrUnknownAction},
	}
	for _, tc := range cases {
		got, err := ParsePayload(tc.raw)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q: err = %v, want %v", tc.raw, err, tc.err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestPayloadStringDecodes(t *testing.T) {
	for _, p := range []Payload{
		{Action: ActionApprove, ID: 9000000001},
		{Action: ActionDelete, ID: 3},
		{Action: ActionService, Service: store.ServiceMulti},
		{Action: ActionDeleteAll},
	} {
		got, err := ParsePayload(p.String())
		if err != nil || got != p {
			t.Fatalf("%s: got %+v err=%v", p, got, err)
		}
	}
}

func TestPayloadErrorsCarryCode(t *testing.T) {
	_, err := ParsePayload("del:x")
	var coded interface{ Code() string }
	if !errors.As(err, &coded) || coded.Code() != "MALFORMED_PAYLOAD" {
		t.Fatalf("err = %v", err)
	}
}

func TestEveryActionFitsCallbackLimit(t *testing.T) {
	// Telegram caps callback data at 64 bytes.
	for _, a := range Actions() {
		p := Payload{Action: a, ID: 1<<63 - 1, Service: store.ServicePrivat}
		if n := len(p.String()); n > 64 {
			t.Fatalf("%s encodes to %d bytes", a, n)
		}
	}
}
