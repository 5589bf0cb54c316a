package types

import "testing"

func TestColumnDefaultValue(t *testing.T) {
	tests := []struct {
		name string
		col  Column
		want any
	}{
		{"numeric kind default", Column{Name: "Total", Kind: KindNumeric}, 0.0},
		{"text kind default", Column{Name: "Item", Kind: KindText}, TextSentinel},
		{"explicit numeric", Column{Name: "Min_Stock", Kind: KindNumeric, Default: 5.0}, 5.0},
		{"explicit empty text", Column{Name: "Barcode", Kind: KindText, Default: ""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.col.DefaultValue(); got != tt.want {
				t.Errorf("DefaultValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStandardSchemas(t *testing.T) {
	schemas := StandardSchemas()
	if len(schemas) != len(StandardDatasetNames) {
		t.Fatalf("got %d schemas, want %d", len(schemas), len(StandardDatasetNames))
	}

	for _, name := range StandardDatasetNames {
		s, ok := schemas[name]
		if !ok {
			t.Fatalf("missing schema %q", name)
		}
		if s.Dataset != name {
			t.Errorf("%s: Dataset = %q", name, s.Dataset)
		}
		if s.File != name+".csv" {
			t.Errorf("%s: File = %q, want %s.csv", name, s.File, name)
		}
		if _, ok := s.Column(s.Key); !ok {
			t.Errorf("%s: key column %q not declared", name, s.Key)
		}
	}

	sales := schemas[DatasetSales].Names()
	want := []string{"Invoice_ID", "Timestamp", "Item", "Total", "Staff", "Payment"}
	if len(sales) != len(want) {
		t.Fatalf("sales columns = %v, want %v", sales, want)
	}
	for i := range want {
		if sales[i] != want[i] {
			t.Errorf("sales column %d = %q, want %q", i, sales[i], want[i])
		}
	}

	if col, _ := schemas[DatasetStock].Column(ColMinStock); col.DefaultValue() != DefaultMinStock {
		t.Errorf("Min_Stock default = %v, want %v", col.DefaultValue(), DefaultMinStock)
	}
	if col, _ := schemas[DatasetRepairs].Column(ColStatus); col.DefaultValue() != RepairStatusReceived {
		t.Errorf("Status default = %v, want %q", col.DefaultValue(), RepairStatusReceived)
	}
	if schemas[DatasetUsers].Identity != ColUsername {
		t.Errorf("users identity = %q, want %q", schemas[DatasetUsers].Identity, ColUsername)
	}

	// Each call returns a fresh map.
	schemas[DatasetStock] = Schema{}
	if StandardSchemas()[DatasetStock].Dataset != DatasetStock {
		t.Error("StandardSchemas shares state between calls")
	}
}

func TestNormalizeIdentity(t *testing.T) {
	for in, want := range map[string]string{
		"admin":   "ADMIN",
		"  Kofi ": "KOFI",
		"":        "",
		"\tama\n": "AMA",
	} {
		if got := NormalizeIdentity(in); got != want {
			t.Errorf("NormalizeIdentity(%q) = %q, want %q", in, got, want)
		}
	}
}
