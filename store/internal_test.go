package store

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// --- recordSetClauses Tests ---

func TestRecordSetClauses(t *testing.T) {
	exprNames := map[string]string{"#version": "version"}
	exprValues := map[string]types.AttributeValue{}

	clauses, err := recordSetClauses(NameRecord{Owner: "addr-a"}, exprNames, exprValues)
	if err != nil {
		t.Fatalf("recordSetClauses failed: %v", err)
	}

	if len(clauses) != 1 || clauses[0] != "#attr0 = :val0" {
		t.Fatalf("expected [#attr0 = :val0], got %v", clauses)
	}
	if exprNames["#attr0"] != "owner" {
		t.Errorf("expected #attr0 -> owner, got %q", exprNames["#attr0"])
	}
	if v, ok := exprValues[":val0"].(*types.AttributeValueMemberS); !ok || v.Value != "addr-a" {
		t.Errorf("expected :val0 = 'addr-a', got %v", exprValues[":val0"])
	}
	if exprNames["#version"] != "version" {
		t.Error("existing expression names must be preserved")
	}
}

func TestManagedAttrsNeverComeFromRecord(t *testing.T) {
	for _, attr := range []string{"pk", "version", "created_at", "updated_at"} {
		if !managedAttrs[attr] {
			t.Errorf("expected %q to be managed", attr)
		}
	}
	if managedAttrs["owner"] {
		t.Error("owner must not be managed")
	}
}

// --- Config Tests ---

func TestDynamoDBConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		in           DynamoDBConfig
		wantTable    string
		wantAttempts int
	}{
		{"zero value", DynamoDBConfig{}, "nameservice", 3},
		{"custom", DynamoDBConfig{Table: "names", MaxUpdateAttempts: 5}, "names", 5},
		{"negative attempts", DynamoDBConfig{MaxUpdateAttempts: -1}, "nameservice", 3},
		{"too many attempts", DynamoDBConfig{MaxUpdateAttempts: 100}, "nameservice", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.validate()
			if cfg.Table != tt.wantTable {
				t.Errorf("expected Table %q, got %q", tt.wantTable, cfg.Table)
			}
			if cfg.MaxUpdateAttempts != tt.wantAttempts {
				t.Errorf("expected MaxUpdateAttempts %d, got %d", tt.wantAttempts, cfg.MaxUpdateAttempts)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := Config{}
	if c := cfg.clone(); c.RegistrationPrice != nil || c.TransferPrice != nil {
		t.Error("expected nil prices to stay nil")
	}
}

func TestKey(t *testing.T) {
	s := &DynamoDB{}
	key := s.key("nameresolver#alice")
	if v, ok := key["pk"].(*types.AttributeValueMemberS); !ok || v.Value != "nameresolver#alice" {
		t.Errorf("unexpected key %v", key)
	}
	if len(key) != 1 {
		t.Errorf("expected single attribute key, got %d", len(key))
	}
}
