package webhook

import "testing"

func TestParseReferenceCode_PrimaryGrammar(t *testing.T) {
	info, ok := ParseReferenceCode("DOCOBO-111-222-333")
	if !ok {
		t.Fatal("expected reference to resolve")
	}
	if info.GuildID != "111" || info.RoleID != "222" || info.UserID != "333" {
		t.Fatalf("unexpected resolution: %+v", info)
	}
}

func TestParseReferenceCode_SnowflakeFallback(t *testing.T) {
	// Banks often mangle the reference into surrounding transfer text.
	code := "CK chuyen tien 123456789012345678 role 234567890123456789 den 345678901234567890 thanh toan"
	info, ok := ParseReferenceCode(code)
	if !ok {
		t.Fatal("expected fallback grammar to resolve")
	}
	if info.GuildID != "123456789012345678" {
		t.Fatalf("guild id = %s", info.GuildID)
	}
	if info.RoleID != "234567890123456789" {
		t.Fatalf("role id = %s", info.RoleID)
	}
	if info.UserID != "345678901234567890" {
		t.Fatalf("user id = %s", info.UserID)
	}
}

func TestParseReferenceCode_Unresolvable(t *testing.T) {
	cases := []string{
		"",
		"thanks for the coffee",
		"DOCOBO-111-222",                      // too few segments
		"DOCOBO-111-222-333-444",              // too many segments
		"DOCOBO-abc-def-ghi",                  // non-numeric segments
		"12345678901234567 2345678901234567",  // only 16/17-digit pair, not three snowflakes
	}
	for _, code := range cases {
		if info, ok := ParseReferenceCode(code); ok {
			t.Fatalf("expected %q to be unresolvable, got %+v", code, info)
		}
	}
}

func TestParseReferenceCode_ShortNumbersResolveViaPrimaryOnly(t *testing.T) {
	// Primary grammar has no digit-length requirement; the fallback does.
	if _, ok := ParseReferenceCode("DOCOBO-1-2-3"); !ok {
		t.Fatal("primary grammar should accept short decimal segments")
	}
	if _, ok := ParseReferenceCode("ids 1 2 3"); ok {
		t.Fatal("fallback must require snowflake-sized numbers")
	}
}
