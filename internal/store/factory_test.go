package store

import (
	"context"
	"testing"
)

func TestNewStore_Memory(t *testing.T) {
	st, err := NewStore(context.Background(), "memory", "")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer st.Close()

	if _, ok := st.(*MemoryStore); !ok {
		t.Errorf("Expected *MemoryStore, got %T", st)
	}
}

func TestNewStore_UnsupportedType(t *testing.T) {
	if _, err := NewStore(context.Background(), "redis", ""); err == nil {
		t.Error("Expected error for unsupported store type")
	}
}

func TestNewStore_PostgresBadDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), "postgres", "not-a-dsn"); err == nil {
		t.Error("Expected error for invalid postgres DSN")
	}
}
