package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnString(t *testing.T) {
	testCases := []struct {
		desc     string
		opt      PostgresOption
		expected string
	}{
		{"defaults", PostgresOption{}, "postgres://localhost:5432?sslmode=disable"},
		{"verbatim dsn", PostgresOption{DSN: "host=db user=x", Host: "ignored"}, "host=db user=x"},
		{
			"full",
			PostgresOption{Host: "db", Port: 6543, User: "ms", Password: "p@ss", Database: "decisions", SSLMode: "require"},
			"postgres://ms:p%40ss@db:6543/decisions?sslmode=require",
		},
		{
			"user without password and params",
			PostgresOption{User: "ms", Params: map[string]string{"search_path": "admission", "": "skip", "application_name": "marketspread"}},
			"postgres://ms@localhost:5432?application_name=marketspread&search_path=admission&sslmode=disable",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.opt.ConnString())
		})
	}
}

func TestNilPostgres(t *testing.T) {
	var p *Postgres
	assert.Nil(t, p.DB())
	assert.NoError(t, p.Close())
}
