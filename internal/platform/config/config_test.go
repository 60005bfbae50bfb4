package config

import (
	"testing"
	"time"

	kit "prosefix/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	api := root.Prefix("CORE_API_")
	if got := api.key("ADDR"); got != "CORE_API_ADDR" {
		t.Fatalf("key() = %q, want %q", got, "CORE_API_ADDR")
	}
	// nested prefix
	apiLog := api.Prefix("LOG_")
	if got := apiLog.key("LEVEL"); got != "CORE_API_LOG_LEVEL" {
		t.Fatalf("nested key() = %q, want %q", got, "CORE_API_LOG_LEVEL")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  prosefix ")
	if got := c.MustString("NAME"); got != "prosefix" {
		t.Fatalf("MustString = %q, want %q", got, "prosefix")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustURL(t *testing.T) {
	c := New().Prefix("U_")
	t.Setenv("U_BASE", "http://localhost:8010")
	if u := c.MustURL("BASE"); !u.IsAbs() {
		t.Fatalf("MustURL returned non-absolute URL")
	}
	t.Setenv("U_BAD", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("BAD") })
}

func TestMustPort(t *testing.T) {
	c := New().Prefix("P_")
	t.Setenv("P_PORT", "4000")
	if got := c.MustPort("PORT"); got != ":4000" {
		t.Fatalf("MustPort = %q, want %q", got, ":4000")
	}
	t.Setenv("P_BAD", "abc")
	kit.MustPanic(t, func() { _ = c.MustPort("BAD") })
	t.Setenv("P_OOB", "70000")
	kit.MustPanic(t, func() { _ = c.MustPort("OOB") })
}

// May* fallbacks

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("MISSING", "def"); got != "def" {
		t.Fatalf("MayString default = %q, want %q", got, "def")
	}
	t.Setenv("S_NAME", " en-US ")
	if got := c.MayString("NAME", "x"); got != "en-US" {
		t.Fatalf("MayString value = %q, want %q", got, "en-US")
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("MISSING", 9); got != 9 {
		t.Fatalf("MayInt default = %d, want %d", got, 9)
	}
	t.Setenv("I_CONNS", " 4 ")
	if got := c.MayInt("CONNS", 1); got != 4 {
		t.Fatalf("MayInt value = %d, want %d", got, 4)
	}
	t.Setenv("I_BAD", "x")
	if got := c.MayInt("BAD", 7); got != 7 {
		t.Fatalf("MayInt invalid should fall back, got %d", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if got := c.MayBool("MISSING", true); !got {
		t.Fatalf("MayBool default = %v, want true", got)
	}
	t.Setenv("B_ON", " false ")
	if got := c.MayBool("ON", true); got {
		t.Fatalf("MayBool value = %v, want false", got)
	}
	t.Setenv("B_BAD", "notabool")
	if got := c.MayBool("BAD", true); !got {
		t.Fatalf("MayBool invalid should fall back, got %v", got)
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	if got := c.MayDuration("MISSING", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v, want %v", got, time.Second)
	}
	t.Setenv("D_TIMEOUT", " 250ms ")
	if got := c.MayDuration("TIMEOUT", 0); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v, want %v", got, 250*time.Millisecond)
	}
	t.Setenv("D_BAD", "nope")
	if got := c.MayDuration("BAD", 3*time.Second); got != 3*time.Second {
		t.Fatalf("MayDuration invalid should fall back, got %v", got)
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	def := []string{"a", "b"}
	if got := c.MayCSV("MISS", def); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("MayCSV default mismatch: %#v", got)
	}
	t.Setenv("CSV_VALS", " x , ,y,z ")
	got := c.MayCSV("VALS", nil)
	want := []string{"x", "y", "z"}
	if len(got) != len(want) {
		t.Fatalf("MayCSV len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MayCSV[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	t.Setenv("CSV_EMPTY", " , , ")
	if got := c.MayCSV("EMPTY", def); len(got) != 2 {
		t.Fatalf("MayCSV all-empty should fall back: %#v", got)
	}
}
