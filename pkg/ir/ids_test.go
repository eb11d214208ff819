package ir

import "testing"

func TestDocumentIDDeterministic(t *testing.T) {
	a := DocumentID("./jobs/load.dtsx", "abc123")
	b := DocumentID("jobs/load.dtsx", "abc123")
	if a != b {
		t.Fatalf("expected normalized paths to produce identical ids, got %q vs %q", a, b)
	}
}

func TestDocumentIDChangesWithContent(t *testing.T) {
	a := DocumentID("jobs/load.dtsx", "abc123")
	b := DocumentID("jobs/load.dtsx", "def456")
	if a == b {
		t.Fatal("expected different content hashes to produce different document ids")
	}
}

func TestDataSourceIDInternsEquivalentLocators(t *testing.T) {
	a := DataSourceID(DataSourceDB, "Server=PRODDB; Database=Sales")
	b := DataSourceID(DataSourceDB, "server=proddb;   database=sales")
	if a != b {
		t.Fatalf("expected equivalent locators to intern to one id, got %q vs %q", a, b)
	}
}

func TestDataEntityIDNormalizesCase(t *testing.T) {
	a := DataEntityID("dbo", "Customer")
	b := DataEntityID("dbo", "CUSTOMER")
	if a != b {
		t.Fatalf("expected case-insensitive interning, got %q vs %q", a, b)
	}
	c := DataEntityID("", "Customer")
	if a == c {
		t.Fatal("expected schema-qualified and unqualified names to differ")
	}
}

func TestComponentIDScopedToDocument(t *testing.T) {
	id := ComponentID("doc:abc", "ExtractCustomers")
	if id != "doc:abc/ExtractCustomers" {
		t.Fatalf("unexpected component id: %q", id)
	}
}
