package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRecordRequestValidate(t *testing.T) {
	cases := []struct {
		name      string
		req       recordRequest
		wantField string
	}{
		{"zero amount", recordRequest{Date: "2024-01-01"}, "amount"},
		{"negative amount", recordRequest{Amount: decimal.NewFromInt(-5), Date: "2024-01-01"}, "amount"},
		{"missing date", recordRequest{Amount: decimal.NewFromInt(10)}, "date"},
		{"garbage date", recordRequest{Amount: decimal.NewFromInt(10), Date: "yesterday"}, "date"},
	}
	for _, tc := range cases {
		if _, errs := tc.req.validate(); errs[tc.wantField] == "" {
			t.Errorf("%s: expected error for %q, got %v", tc.name, tc.wantField, errs)
		}
	}

	ok := recordRequest{Amount: decimal.NewFromFloat(12.34), Date: "2024-05-01"}
	date, errs := ok.validate()
	if errs != nil {
		t.Fatalf("valid request rejected: %v", errs)
	}
	if date.Format("2006-01-02") != "2024-05-01" {
		t.Fatalf("parsed date = %s", date.Format("2006-01-02"))
	}

	// RFC3339 timestamps are accepted too
	rfc := recordRequest{Amount: decimal.NewFromInt(1), Date: "2024-05-01T10:30:00Z"}
	if _, errs := rfc.validate(); errs != nil {
		t.Fatalf("RFC3339 date rejected: %v", errs)
	}
}

func TestFieldErrorsFallback(t *testing.T) {
	errs := fieldErrors(errTest("unexpected EOF"))
	if errs["non_field_errors"] == "" {
		t.Fatalf("expected non_field_errors entry, got %v", errs)
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
