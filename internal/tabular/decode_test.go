package tabular_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"refcat/internal/tabular"
	"refcat/internal/testsupport"
)

func TestDecodeSemicolonAndCommaAreEquivalent(t *testing.T) {
	semicolon := testsupport.ZipPayload(t, "dict.csv", []byte("ID;CODE;NAME\n1;A;alpha\n2;B;beta\n"))
	comma := testsupport.ZipPayload(t, "dict.csv", []byte("ID,CODE,NAME\n1,A,alpha\n2,B,beta\n"))

	first, err := tabular.Decode(semicolon)
	if err != nil {
		t.Fatalf("decode semicolon payload: %v", err)
	}
	second, err := tabular.Decode(comma)
	if err != nil {
		t.Fatalf("decode comma payload: %v", err)
	}

	if !reflect.DeepEqual(first.Columns, second.Columns) {
		t.Fatalf("column mismatch: %v vs %v", first.Columns, second.Columns)
	}
	if !reflect.DeepEqual(first.Rows, second.Rows) {
		t.Fatalf("row mismatch: %v vs %v", first.Rows, second.Rows)
	}
	if first.RowCount() != 2 {
		t.Fatalf("expected 2 data rows, got %d", first.RowCount())
	}
}

func TestDecodeUsesFirstMemberRegardlessOfName(t *testing.T) {
	payload := testsupport.ZipPayloadMembers(t, []testsupport.ZipMember{
		{Name: "zz_anything.txt", Data: []byte("ID;NAME\n1;one\n")},
		{Name: "ignored.csv", Data: []byte("OTHER;DATA\n9;nine\n")},
	})

	table, err := tabular.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if table.Columns[0] != "ID" {
		t.Fatalf("expected first member to win, got header %v", table.Columns)
	}
}

func TestDecodeTranscodesWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte("ID;НАЗВАНИЕ\n1;справочник\n"))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	payload := testsupport.ZipPayload(t, "dict.csv", encoded)

	table, err := tabular.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if table.Columns[1] != "НАЗВАНИЕ" {
		t.Fatalf("expected transcoded header, got %v", table.Columns)
	}
	if table.Rows[0][1] != "справочник" {
		t.Fatalf("expected transcoded cell, got %v", table.Rows)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := tabular.Decode([]byte("not a zip archive"))
	if err == nil {
		t.Fatal("expected error for non-archive input")
	}
	if !errors.Is(err, tabular.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecodeRejectsEmptyArchive(t *testing.T) {
	payload := testsupport.ZipPayloadMembers(t, nil)
	_, err := tabular.Decode(payload)
	if !errors.Is(err, tabular.ErrDecode) {
		t.Fatalf("expected ErrDecode for empty archive, got %v", err)
	}
}

func TestDecodeSingleColumnFile(t *testing.T) {
	payload := testsupport.ZipPayload(t, "dict.csv", []byte("NAME\nalpha\nbeta\n"))
	table, err := tabular.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(table.Columns) != 1 || table.RowCount() != 2 {
		t.Fatalf("unexpected shape: %v / %v", table.Columns, table.Rows)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	table := &tabular.Table{
		Columns: []string{"ID", "NAME"},
		Rows:    [][]string{{"1", "alpha"}, {"2", "beta, with comma"}},
	}
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := table.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "ID,NAME\n") {
		t.Fatalf("expected header first, got %q", content)
	}
	if !strings.Contains(content, `"beta, with comma"`) {
		t.Fatalf("expected quoted cell, got %q", content)
	}
}
