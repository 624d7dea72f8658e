package database

import "testing"

func TestDSN(t *testing.T) {
	c := &Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "store"}
	want := "host=db port=5432 user=u password=p dbname=store sslmode=disable TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}

	c.SSLMode = "require"
	want = "host=db port=5432 user=u password=p dbname=store sslmode=require TimeZone=UTC"
	if got := c.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
