package dialect

import (
	"strings"
	"testing"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		wantKind Vendor
	}{
		{name: "postgres", input: "postgresql", wantKind: Postgres},
		{name: "mysql", input: "mysql", wantKind: MySQL},
		{name: "mariadb", input: "mariadb", wantKind: MariaDB},
		{name: "sqlite", input: "sqlite", wantKind: SQLite},
		{name: "mssql", input: "mssql", wantKind: SQLServer},
		{name: "oracle", input: "oracle", wantKind: Oracle},
		{name: "case insensitive", input: "PostgreSQL", wantKind: Postgres},
		{name: "gorm postgres driver name", input: "postgres", wantKind: Postgres},
		{name: "gorm sqlserver driver name", input: "sqlserver", wantKind: SQLServer},
		{name: "unknown", input: "db2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := For(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("For(%q) = nil error, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("For(%q) unexpected error: %v", tt.input, err)
			}
			if d.Vendor() != tt.wantKind {
				t.Errorf("For(%q).Vendor() = %v, want %v", tt.input, d.Vendor(), tt.wantKind)
			}
		})
	}
}

func TestConcat(t *testing.T) {
	tests := []struct {
		vendor Vendor
		want   string
	}{
		{Postgres, `"a" || "'.'" || "b"`},
		{MySQL, "CONCAT(a, '.', b)"},
		{SQLServer, "a + '.' + b"},
		{SQLite, `a || "'.'" || b`},
		{Oracle, `a || "'.'" || b`},
	}
	for _, tt := range tests {
		t.Run(string(tt.vendor), func(t *testing.T) {
			var d Dialect
			var err error
			d, err = For(string(tt.vendor))
			if err != nil {
				t.Fatal(err)
			}
			var got string
			switch tt.vendor {
			case Postgres, SQLite, Oracle:
				got = d.Concat(`"a"`, `"'.'"`, `"b"`)
			case MySQL:
				got = d.Concat("a", "'.'", "b")
			case SQLServer:
				got = d.Concat("a", "'.'", "b")
			}
			if got != tt.want {
				t.Errorf("Concat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToHexAndLpad(t *testing.T) {
	pg, _ := For("postgresql")
	if got := pg.ToHex("n"); got != "UPPER(TO_HEX(n))" {
		t.Errorf("postgres ToHex = %q", got)
	}
	if got := pg.Lpad("x", 3, "'0'"); got != "LPAD(x, 3, '0')" {
		t.Errorf("postgres Lpad = %q", got)
	}

	my, _ := For("mysql")
	if got := my.ToHex("n"); got != "UPPER(CONV(n, 10, 16))" {
		t.Errorf("mysql ToHex = %q", got)
	}

	sl, _ := For("sqlite")
	if got := sl.ToHex("n"); !strings.Contains(got, "printf") {
		t.Errorf("sqlite ToHex should use printf, got %q", got)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		vendor Vendor
		want   string
	}{
		{Postgres, `"nodes"`},
		{MySQL, "`nodes`"},
		{SQLServer, "[nodes]"},
		{SQLite, `"nodes"`},
		{Oracle, `"nodes"`},
	}
	for _, tt := range tests {
		d, err := For(string(tt.vendor))
		if err != nil {
			t.Fatal(err)
		}
		if got := d.Quote("nodes"); got != tt.want {
			t.Errorf("%s Quote() = %q, want %q", tt.vendor, got, tt.want)
		}
	}
}

func TestUpdateFromShapesPerVendor(t *testing.T) {
	fields := []string{"priority", "_path", "_depth"}
	alias := map[string]string{"priority": "new_priority", "_path": "new_path", "_depth": "new_depth"}

	cases := []struct {
		vendor Vendor
		want   string // substring that must appear
	}{
		{Postgres, "UPDATE \"nodes\" AS orig"},
		{MySQL, "UPDATE `nodes`"},
		{SQLServer, "UPDATE orig"},
		{Oracle, "MERGE INTO \"nodes\" orig"},
		{SQLite, "CREATE TEMP TABLE"},
	}
	for _, tt := range cases {
		d, err := For(string(tt.vendor))
		if err != nil {
			t.Fatal(err)
		}
		sql, ok := d.UpdateFrom("nodes", "(id, new_priority, new_path, new_depth)", "SELECT 1", "SELECT 2", fields, alias)
		if !ok {
			t.Fatalf("%s UpdateFrom returned ok=false", tt.vendor)
		}
		if !strings.Contains(sql, tt.want) {
			t.Errorf("%s UpdateFrom() = %q, want substring %q", tt.vendor, sql, tt.want)
		}
	}
}

func TestRequiresMaterializedCTE(t *testing.T) {
	sl, _ := For("sqlite")
	if !sl.RequiresMaterializedCTE() {
		t.Error("sqlite should require a materialized CTE")
	}
	pg, _ := For("postgresql")
	if pg.RequiresMaterializedCTE() {
		t.Error("postgres should not require a materialized CTE")
	}
}

func TestLockNowaitClause(t *testing.T) {
	sl, _ := For("sqlite")
	if sl.LockNowaitClause() != "" {
		t.Error("sqlite has no row locks, clause should be empty")
	}
	pg, _ := For("postgresql")
	if pg.LockNowaitClause() == "" {
		t.Error("postgres should emit a NOWAIT clause")
	}
}
