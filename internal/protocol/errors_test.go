package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for _, code := range []string{
		"", ErrProtoBadRequest, ErrBadRequest, ErrInvalidTarget,
		ErrBlocked, ErrConflict, ErrSensor, ErrInternal,
	} {
		if !IsKnownCode(code) {
			t.Fatalf("code %q should be known", code)
		}
	}
	if IsKnownCode("E_NOPE") {
		t.Fatalf("unknown code accepted")
	}
}

func TestDecodeBase(t *testing.T) {
	m, err := DecodeBase([]byte(`{"type":"PROGRAM","protocol_version":"1.0","program":{"nodes":[]}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != TypeProgram || m.ProtocolVersion != Version {
		t.Fatalf("base = %+v", m)
	}

	if _, err := DecodeBase([]byte(`{`)); err == nil {
		t.Fatalf("malformed JSON should error")
	}
}
