package db

import "testing"

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "postgres_scheme",
			in:   "postgres://u:p@localhost:5432/taskhub?sslmode=disable",
			want: "pgx5://u:p@localhost:5432/taskhub?sslmode=disable",
		},
		{
			name: "postgresql_scheme",
			in:   "postgresql://u:p@localhost:5432/taskhub?sslmode=disable",
			want: "pgx5://u:p@localhost:5432/taskhub?sslmode=disable",
		},
		{
			name: "already_pgx5",
			in:   "pgx5://u:p@localhost:5432/taskhub",
			want: "pgx5://u:p@localhost:5432/taskhub",
		},
		{
			name: "unrelated_scheme_untouched",
			in:   "mysql://u:p@localhost:3306/taskhub",
			want: "mysql://u:p@localhost:3306/taskhub",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := migrateURL(tt.in); got != tt.want {
				t.Fatalf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
