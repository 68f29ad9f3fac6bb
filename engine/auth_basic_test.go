package engine

import "testing"

func TestBasicRoundTrip(t *testing.T) {
	users := []struct{ user, pass string }{
		{"alice", "secret"},
		{"bob", ""},
		{"carol", "pa:ss"}, // colon in password must survive the split-at-first-colon rule
	}
	for _, u := range users {
		encoded := basicEncode(u.user, u.pass)
		// strip the "basic " scheme prefix before decoding the credentials
		creds := encoded[len("basic "):]
		gotUser, gotPass, err := basicDecode(creds)
		if err != nil {
			t.Fatalf("unexpected error decoding %q: %v", encoded, err)
		}
		if gotUser != u.user || gotPass != u.pass {
			t.Fatalf("round trip mismatch: got (%q, %q), want (%q, %q)", gotUser, gotPass, u.user, u.pass)
		}
	}
}

func TestBasicChallenge(t *testing.T) {
	got := basicChallenge("myrealm")
	want := `Basic realm="myrealm"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
