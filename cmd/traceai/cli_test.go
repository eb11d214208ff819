package main

import (
	"os"
	"path/filepath"
	"testing"
)

const cliLineageCSV = "source,target\nCustomer,Warehouse.Customer\n"

func withTempPersistDir(t *testing.T) GlobalFlags {
	t.Helper()
	return GlobalFlags{JSON: true, Quiet: true, PersistDir: filepath.Join(t.TempDir(), "persist"), ProjectID: "cli-test"}
}

func TestCLI_InitIngestQueryRoundTrip(t *testing.T) {
	globals := withTempPersistDir(t)

	if err := runInit(nil, globals); err != nil {
		t.Fatalf("init: %v", err)
	}

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "lineage.csv"), []byte(cliLineageCSV), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runIngest([]string{srcDir}, globals); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if err := runStats(nil, globals); err != nil {
		t.Fatalf("stats: %v", err)
	}

	if err := runQuery([]string{"--name", "Customer"}, globals); err != nil {
		t.Fatalf("query: %v", err)
	}

	if err := runTrace([]string{"Customer"}, globals); err != nil {
		t.Fatalf("trace: %v", err)
	}

	if err := runImpact([]string{"Customer"}, globals); err != nil {
		t.Fatalf("impact: %v", err)
	}

	if err := runSearch([]string{"Customer"}, globals); err != nil {
		t.Fatalf("search: %v", err)
	}
}

func TestCLI_TraceUnknownEntityIsError(t *testing.T) {
	globals := withTempPersistDir(t)
	if err := runInit(nil, globals); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runTrace([]string{"NoSuchEntity"}, globals); err == nil {
		t.Fatal("expected UnknownEntity error")
	}
}

func TestCLI_Reset(t *testing.T) {
	globals := withTempPersistDir(t)
	if err := runInit(nil, globals); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runReset([]string{"--yes"}, globals); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(globals.PersistDir); !os.IsNotExist(err) {
		t.Fatalf("expected persist dir to be removed, stat err = %v", err)
	}
}

func TestCLI_IngestRequiresExactlyOneDir(t *testing.T) {
	globals := withTempPersistDir(t)
	if err := runInit(nil, globals); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := runIngest(nil, globals); err == nil {
		t.Fatal("expected error when no directory argument is given")
	}
}
