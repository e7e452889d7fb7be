package fetch_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"refcat/internal/catalog"
	"refcat/internal/config"
	"refcat/internal/fetch"
	"refcat/internal/history"
	"refcat/internal/registry"
	"refcat/internal/testsupport"
)

// catalogFixture serves passport lookups and archive downloads for a fixed
// set of dictionaries.
type catalogFixture struct {
	passports map[string]string // oid -> JSON body
	archives  map[string][]byte // "<oid>_<version>" -> zip payload
}

func (f *catalogFixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/passport":
			body, ok := f.passports[r.URL.Query().Get("identifier")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		case strings.HasSuffix(r.URL.Path, "_csv.zip"):
			key := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), "_csv.zip")
			payload, ok := f.archives[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
}

type orchestratorEnv struct {
	cfg          *config.Config
	orchestrator *fetch.Orchestrator
	registryPath string
	store        *history.Store
}

func newEnv(t *testing.T, fixture *catalogFixture) *orchestratorEnv {
	t.Helper()
	server := fixture.server(t)
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	client := catalog.NewClient(cfg,
		catalog.WithBaseURL(server.URL),
		catalog.WithDownloadURL(server.URL))
	reg := registry.New(cfg.Output.RegistryPath, nil)
	resolver := catalog.NewResolver(client, reg, nil)

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return &orchestratorEnv{
		cfg:          cfg,
		orchestrator: fetch.New(client, resolver, store, cfg.Output.Dir, nil),
		registryPath: cfg.Output.RegistryPath,
		store:        store,
	}
}

func TestProcessIsolatesFailuresAndPreservesOrder(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
			// "2.2" fails resolution (no passport entry).
			"3.3": `{"shortName":"Third","version":"3.0"}`,
		},
		archives: map[string][]byte{
			"1.1_1.0": testsupport.ZipPayload(t, "first.csv", []byte("ID;NAME\n1;one\n2;two\n")),
			"3.3_3.0": testsupport.ZipPayload(t, "third.csv", []byte("ID;NAME\n3;three\n")),
		},
	}
	env := newEnv(t, fixture)

	oids := []string{"1.1", "2.2", "3.3"}
	outcomes := env.orchestrator.Process(context.Background(), oids)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	for i, oid := range oids {
		if outcomes[i].OID != oid {
			t.Fatalf("outcome order mismatch at %d: got %s want %s", i, outcomes[i].OID, oid)
		}
	}
	if !outcomes[0].Succeeded() || !outcomes[2].Succeeded() {
		t.Fatalf("expected successes for 1.1 and 3.3: %v / %v", outcomes[0].Err, outcomes[2].Err)
	}
	if outcomes[1].Succeeded() {
		t.Fatal("expected failure for 2.2")
	}
	if outcomes[1].OID != "2.2" {
		t.Fatalf("failure attributed to wrong identifier: %s", outcomes[1].OID)
	}
	if outcomes[0].RowCount != 2 {
		t.Fatalf("unexpected row count: %d", outcomes[0].RowCount)
	}

	for _, idx := range []int{0, 2} {
		if _, err := os.Stat(outcomes[idx].Path); err != nil {
			t.Fatalf("expected output file for %s: %v", outcomes[idx].OID, err)
		}
	}
}

func TestProcessWritesDerivedFilenames(t *testing.T) {
	oid := "1.2.643.5.1.13.13.11.1461"
	fixture := &catalogFixture{
		passports: map[string]string{
			oid: `{"shortName":"Dict","version":"5.15"}`,
		},
		archives: map[string][]byte{
			oid + "_5.15": testsupport.ZipPayload(t, "dict.csv", []byte("ID;NAME\n1;one\n")),
		},
	}
	env := newEnv(t, fixture)

	outcomes := env.orchestrator.Process(context.Background(), []string{oid})
	if !outcomes[0].Succeeded() {
		t.Fatalf("unexpected failure: %v", outcomes[0].Err)
	}
	want := filepath.Join(env.cfg.Output.Dir, "1_2_643_5_1_13_13_11_1461.csv")
	if outcomes[0].Path != want {
		t.Fatalf("unexpected output path: got %q want %q", outcomes[0].Path, want)
	}
}

func TestProcessSavesRegistrySideFile(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
		},
		archives: map[string][]byte{
			"1.1_1.0": testsupport.ZipPayload(t, "first.csv", []byte("ID;NAME\n1;one\n")),
		},
	}
	env := newEnv(t, fixture)

	env.orchestrator.Process(context.Background(), []string{"1.1", "9.9"})

	entries, err := registry.Load(env.registryPath)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if entries["1.1"] != "First" {
		t.Fatalf("expected registry entry for successful resolution, got %v", entries)
	}
	if _, ok := entries["9.9"]; ok {
		t.Fatal("failed identifier must not be in the registry")
	}
}

func TestProcessRecordsHistory(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
		},
		archives: map[string][]byte{
			"1.1_1.0": testsupport.ZipPayload(t, "first.csv", []byte("ID;NAME\n1;one\n")),
		},
	}
	env := newEnv(t, fixture)

	env.orchestrator.Process(context.Background(), []string{"1.1", "9.9"})

	records, err := env.store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(records))
	}
	byOID := map[string]history.Record{}
	for _, rec := range records {
		byOID[rec.OID] = rec
	}
	if byOID["1.1"].Status != history.StatusFetched || byOID["1.1"].RowCount != 1 {
		t.Fatalf("unexpected success record: %+v", byOID["1.1"])
	}
	if byOID["9.9"].Status != history.StatusFailed || byOID["9.9"].Detail == "" {
		t.Fatalf("unexpected failure record: %+v", byOID["9.9"])
	}
	if byOID["1.1"].BatchID != byOID["9.9"].BatchID {
		t.Fatal("expected both records to share the batch id")
	}
}

func TestProcessContinuesPastDownloadFailure(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
			"2.2": `{"shortName":"Second","version":"2.0"}`,
		},
		archives: map[string][]byte{
			// 1.1's archive is missing; 2.2's decodes fine.
			"2.2_2.0": testsupport.ZipPayload(t, "second.csv", []byte("ID;NAME\n2;two\n")),
		},
	}
	env := newEnv(t, fixture)

	outcomes := env.orchestrator.Process(context.Background(), []string{"1.1", "2.2"})
	if outcomes[0].Succeeded() {
		t.Fatal("expected download failure for 1.1")
	}
	if !outcomes[1].Succeeded() {
		t.Fatalf("expected 2.2 to succeed despite 1.1 failing: %v", outcomes[1].Err)
	}
}

func TestProcessOneAsTableWritesNothing(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
		},
		archives: map[string][]byte{
			"1.1_1.0": testsupport.ZipPayload(t, "first.csv", []byte("ID;NAME\n1;one\n2;two\n")),
		},
	}
	env := newEnv(t, fixture)

	outcome := env.orchestrator.ProcessOne(context.Background(), "1.1", true)
	if !outcome.Succeeded() {
		t.Fatalf("unexpected failure: %v", outcome.Err)
	}
	if outcome.Table == nil || outcome.Table.RowCount() != 2 {
		t.Fatalf("expected in-memory table with 2 rows, got %+v", outcome.Table)
	}
	if outcome.Path != "" {
		t.Fatalf("expected no file path in table mode, got %q", outcome.Path)
	}

	entries, err := os.ReadDir(env.cfg.Output.Dir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir, found %d entries", len(entries))
	}
}

func TestProcessOneFileModeReturnsPath(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
		},
		archives: map[string][]byte{
			"1.1_1.0": testsupport.ZipPayload(t, "first.csv", []byte("ID;NAME\n1;one\n")),
		},
	}
	env := newEnv(t, fixture)

	outcome := env.orchestrator.ProcessOne(context.Background(), "1.1", false)
	if !outcome.Succeeded() {
		t.Fatalf("unexpected failure: %v", outcome.Err)
	}
	if outcome.Table != nil {
		t.Fatal("expected no in-memory table in file mode")
	}
	if _, err := os.Stat(outcome.Path); err != nil {
		t.Fatalf("expected written file: %v", err)
	}
}

func TestProcessOneUnresolvedYieldsNoResult(t *testing.T) {
	env := newEnv(t, &catalogFixture{passports: map[string]string{}})

	outcome := env.orchestrator.ProcessOne(context.Background(), "9.9", true)
	if outcome.Succeeded() {
		t.Fatal("expected failure for unresolvable identifier")
	}
	if outcome.Table != nil || outcome.Path != "" {
		t.Fatalf("expected empty result, got %+v", outcome)
	}
	if !strings.Contains(outcome.Err.Error(), "metadata not obtained") {
		t.Fatalf("unexpected error: %v", outcome.Err)
	}
}

func TestOutputFilename(t *testing.T) {
	got := fetch.OutputFilename("1.2.643.5.1.13.13.11.1461")
	if got != "1_2_643_5_1_13_13_11_1461.csv" {
		t.Fatalf("unexpected filename: %q", got)
	}
}

func TestProcessHandlesUndecodableArchive(t *testing.T) {
	fixture := &catalogFixture{
		passports: map[string]string{
			"1.1": `{"shortName":"First","version":"1.0"}`,
		},
		archives: map[string][]byte{
			"1.1_1.0": []byte("this is not a zip"),
		},
	}
	env := newEnv(t, fixture)

	outcomes := env.orchestrator.Process(context.Background(), []string{"1.1"})
	if outcomes[0].Succeeded() {
		t.Fatal("expected decode failure")
	}
	if !strings.Contains(fmt.Sprint(outcomes[0].Err), "decode error") {
		t.Fatalf("unexpected error: %v", outcomes[0].Err)
	}
}
